package tutor

import "voicecoach/voice"

const voiceStyle = "Conversation"

// DefaultVoices binds a persona to each mode: Matthew teaches, Alicia
// examines, Ken plays the student.
func DefaultVoices() map[Mode]voice.Options {
	return map[Mode]voice.Options{
		ModeLearn:     {Voice: "en-US-matthew", Style: voiceStyle},
		ModeQuiz:      {Voice: "en-US-alicia", Style: voiceStyle},
		ModeTeachBack: {Voice: "en-US-ken", Style: voiceStyle},
	}
}

// InitialVoice is the voice a tutor session starts with.
func InitialVoice() voice.Options {
	return DefaultVoices()[ModeLearn]
}
