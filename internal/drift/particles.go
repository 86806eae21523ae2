package drift

// responseParticles is the fixed set of tokens that mark a message as a
// conversational response rather than a topic statement. A message whose
// first word is a particle and which is at most four words long gets the
// response-particle floor: "Yes.", "Sure, go ahead", "Hmm, maybe" all
// continue the current topic even though their embeddings say nothing.
var responseParticles = map[string]bool{
	// Affirmative
	"yes": true, "yeah": true, "yep": true, "yup": true, "sure": true,
	"definitely": true, "absolutely": true, "certainly": true,
	"correct": true, "exactly": true, "indeed": true, "agreed": true,
	// Negative
	"no": true, "nope": true, "nah": true, "never": true,
	// Acknowledgment
	"ok": true, "okay": true, "alright": true, "right": true,
	"fine": true, "cool": true, "great": true, "nice": true,
	"thanks": true, "gotcha": true, "understood": true,
	// Uncertainty
	"maybe": true, "perhaps": true, "possibly": true, "probably": true,
	"hmm": true, "hm": true, "dunno": true,
	// Continuation
	"continue": true, "proceed": true, "more": true,
	// Discourse markers
	"oh": true, "ah": true, "wow": true, "huh": true, "well": true,
	"so": true, "anyway": true, "interesting": true,
}
