package domain

import "sort"

// Persona selects the system prompt used in chat mode.
type Persona string

// Available personas.
const (
	PersonaAssistant Persona = "assistant"
	PersonaCoder     Persona = "coder"
	PersonaWriter    Persona = "writer"
	PersonaTeacher   Persona = "teacher"
	PersonaAnalyst   Persona = "analyst"
)

var personaPrompts = map[Persona]string{
	PersonaAssistant: "You are a helpful AI assistant.",
	PersonaCoder:     "You are an expert software engineer. Write clean and correct code.",
	PersonaWriter:    "You are a creative writer. Use imaginative and expressive language.",
	PersonaTeacher:   "You are a patient teacher. Explain concepts clearly with examples.",
	PersonaAnalyst:   "You are a data analyst. Provide structured, analytical responses.",
}

// IsValid returns true if the persona is recognised.
func (p Persona) IsValid() bool {
	_, ok := personaPrompts[p]
	return ok
}

// SystemPrompt returns the persona's system prompt.
// Unknown personas fall back to the assistant prompt.
func (p Persona) SystemPrompt() string {
	if prompt, ok := personaPrompts[p]; ok {
		return prompt
	}
	return personaPrompts[PersonaAssistant]
}

// String returns the string representation.
func (p Persona) String() string {
	return string(p)
}

// AllPersonas returns all personas sorted by name.
func AllPersonas() []Persona {
	personas := make([]Persona, 0, len(personaPrompts))
	for p := range personaPrompts {
		personas = append(personas, p)
	}
	sort.Slice(personas, func(i, j int) bool { return personas[i] < personas[j] })
	return personas
}
