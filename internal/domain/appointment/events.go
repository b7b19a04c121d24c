package appointment

import "context"

// Booked is published after a patient books an appointment.
type Booked struct {
	Appointment *Appointment
	PatientName string
}

// Decided is published after a pending appointment is approved or rejected.
type Decided struct {
	Appointment *Appointment
	Status      Status
}

// Cancelled is published after a patient cancels a pending appointment.
type Cancelled struct {
	Appointment *Appointment
	PatientName string
}

// Handler consumes appointment events. Handlers run synchronously inside the
// publishing transaction; an error aborts the operation.
type Handler interface {
	OnBooked(ctx context.Context, e Booked) error
	OnDecided(ctx context.Context, e Decided) error
	OnCancelled(ctx context.Context, e Cancelled) error
}

// Dispatcher fans events out to subscribed handlers in order.
type Dispatcher struct {
	handlers []Handler
}

func NewDispatcher(handlers ...Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers}
}

// Subscribe adds a handler. Not safe for use once requests are served.
func (d *Dispatcher) Subscribe(h Handler) {
	d.handlers = append(d.handlers, h)
}

func (d *Dispatcher) booked(ctx context.Context, e Booked) error {
	for _, h := range d.handlers {
		if err := h.OnBooked(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) decided(ctx context.Context, e Decided) error {
	for _, h := range d.handlers {
		if err := h.OnDecided(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) cancelled(ctx context.Context, e Cancelled) error {
	for _, h := range d.handlers {
		if err := h.OnCancelled(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
