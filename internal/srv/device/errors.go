package device

// HardwareInitError means a GPIO, I2C or font resource could not be set up.
// It is fatal at startup.
type HardwareInitError struct {
	Resource string
	Err      error
}

func (e *HardwareInitError) Error() string {
	return "unable to initialize " + e.Resource + ": " + e.Err.Error()
}

func (e *HardwareInitError) Unwrap() error {
	return e.Err
}

// RenderError is a display I/O failure. Callers log it and move on.
type RenderError struct {
	Text string
	Err  error
}

func (e *RenderError) Error() string {
	return "unable to render \"" + e.Text + "\": " + e.Err.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
