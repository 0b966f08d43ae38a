package ws

import "html/template"

// Species catalog shown on the persona form, keyed by species with breed
// suggestions
var speciesCatalog = map[string][]string{
	"Dog": {
		"Chihuahua", "Maltese", "Pomeranian", "Toy Poodle", "Shih Tzu",
		"Shiba Inu", "Welsh Corgi", "Beagle", "Border Collie",
		"Golden Retriever", "Labrador Retriever", "Siberian Husky",
	},
	"Cat": {
		"Korean Shorthair", "American Shorthair", "British Shorthair",
		"Russian Blue", "Siamese", "Bengal", "Scottish Fold", "Munchkin",
		"Ragdoll", "Persian", "Maine Coon", "Norwegian Forest Cat",
	},
	"Rodent": {
		"Golden Hamster", "Dwarf Hamster", "Guinea Pig", "Chinchilla",
		"Netherland Dwarf Rabbit", "Holland Lop", "Ferret",
	},
	"Bird": {
		"Cockatoo", "Budgerigar", "Cockatiel", "Lovebird", "African Grey",
		"Canary", "Java Sparrow",
	},
	"Turtle": {
		"Russian Tortoise", "Hermann's Tortoise", "Red-eared Slider",
	},
}

var personalityTraits = []string{
	"playful", "gentle", "mischievous", "calm", "curious", "timid", "brave",
	"affectionate", "independent", "sociable", "quiet", "energetic",
	"clever", "stubborn", "loyal", "protective", "sensitive", "friendly",
	"watchful", "laid-back",
}

var speechStyles = []string{
	"cute", "affectionate", "aloof", "innocent", "dignified", "playful",
	"calm", "lively",
}

var pageTemplates = template.Must(template.New("").Parse(`
{{define "index"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>My Pet's Voice</title></head>
<body>
<h1>Create your pet</h1>
<form id="pet-form">
  <label>Name <input name="name" required maxlength="50"></label><br>
  <label>Species
    <select name="species" required>
      {{range $species, $breeds := .Species}}<option value="{{$species}}">{{$species}}</option>{{end}}
    </select>
  </label><br>
  <label>Breed
    <select name="breed">
      <option value=""></option>
      {{range $species, $breeds := .Species}}{{range $breeds}}<option value="{{.}}">{{.}}</option>{{end}}{{end}}
    </select>
  </label><br>
  <label>Age <input name="age"></label>
  <label>Gender <select name="gender"><option>male</option><option>female</option></select></label>
  <label>Birthday <input name="birthday" type="date"></label><br>
  <fieldset>
    <legend>Personality</legend>
    {{range .PersonalityTraits}}<label><input type="checkbox" name="personality" value="{{.}}">{{.}}</label>{{end}}
  </fieldset>
  <label>Speech style
    <select name="speech_style">
      {{range .SpeechStyles}}<option value="{{.}}">{{.}}</option>{{end}}
    </select>
  </label><br>
  <label>What your pet calls you <input name="owner_call" required></label><br>
  <label>Likes (comma separated) <input name="likes"></label><br>
  <label>Dislikes (comma separated) <input name="dislikes"></label><br>
  <label>Habits (comma separated) <input name="habits"></label><br>
  <label>Anything else <textarea name="special_notes"></textarea></label><br>
  <button type="submit">Start chatting</button>
</form>
<script>
document.getElementById('pet-form').addEventListener('submit', async (e) => {
  e.preventDefault();
  const resp = await fetch('/create_pet', {method: 'POST', body: new URLSearchParams(new FormData(e.target))});
  const body = await resp.json();
  if (body.success) { window.location = body.redirect; }
  else { alert(body.error || 'Failed to create pet'); }
});
</script>
</body>
</html>{{end}}

{{define "chat"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Chat with {{.Pet.Name}}</title></head>
<body>
<h1>{{.Pet.Name}} ({{.Pet.Species}})</h1>
<div id="messages"></div>
<p id="typing" hidden></p>
<form id="chat-form">
  <input id="message" autocomplete="off" maxlength="500">
  <button type="submit">Send</button>
  <button type="button" id="reset">Reset</button>
</form>
<script>
const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
const messages = document.getElementById('messages');
const typing = document.getElementById('typing');

function addLine(sender, text) {
  const p = document.createElement('p');
  p.textContent = sender + ': ' + text;
  messages.appendChild(p);
}

ws.onmessage = (raw) => {
  const {event, data} = JSON.parse(raw.data);
  switch (event) {
    case 'user_message': addLine('You', data.message); break;
    case 'bot_typing': typing.textContent = data.pet_name + ' is typing...'; typing.hidden = false; break;
    case 'bot_response': typing.hidden = true; addLine(data.pet_name, data.message); break;
    case 'chat_reset': messages.innerHTML = ''; break;
    case 'error': typing.hidden = true; alert(data.message); break;
  }
};

document.getElementById('chat-form').addEventListener('submit', (e) => {
  e.preventDefault();
  const input = document.getElementById('message');
  if (!input.value.trim()) return;
  ws.send(JSON.stringify({event: 'send_message', data: {message: input.value}}));
  input.value = '';
});
document.getElementById('reset').addEventListener('click', () => {
  ws.send(JSON.stringify({event: 'reset_chat'}));
});
</script>
</body>
</html>{{end}}
`))
