package notification

import (
	"fmt"
	"strings"
	"sync"
)

// Template ids for the built-in messages.
const (
	TemplateBooked    = "appointment-booked"
	TemplateApproved  = "appointment-approved"
	TemplateRejected  = "appointment-rejected"
	TemplateCancelled = "appointment-cancelled"
)

// Templates renders messages with {{key}} placeholders.
type Templates struct {
	mu     sync.RWMutex
	bodies map[string]string
}

// NewTemplates creates a Templates with the built-in messages registered.
func NewTemplates() *Templates {
	t := &Templates{bodies: make(map[string]string)}
	t.Register(TemplateBooked, "New booking by {{patient_name}} for {{when}}")
	t.Register(TemplateApproved, "Your appointment on {{when}} was approved")
	t.Register(TemplateRejected, "Your appointment on {{when}} was rejected")
	t.Register(TemplateCancelled, "{{patient_name}} cancelled the appointment for {{when}}")
	return t
}

// Register adds or replaces a template.
func (t *Templates) Register(id, body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bodies[id] = body
}

// Render fills in the template. Placeholders missing from data are left
// as-is.
func (t *Templates) Render(id string, data map[string]string) (string, error) {
	t.mu.RLock()
	body, ok := t.bodies[id]
	t.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template %q not found", id)
	}
	for k, v := range data {
		body = strings.ReplaceAll(body, "{{"+k+"}}", v)
	}
	return body, nil
}
