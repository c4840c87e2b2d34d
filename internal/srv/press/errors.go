package press

import "strconv"

// InvalidValueError reports a GPIO level outside {0,1}.
type InvalidValueError struct {
	Value int
}

func (e *InvalidValueError) Error() string {
	return "invalid gpio value: " + strconv.Itoa(e.Value)
}
