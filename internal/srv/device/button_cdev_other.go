//go:build !linux

package device

import "github.com/pkg/errors"

// CdevButton is not available on non-Linux platforms.
type CdevButton struct{}

func NewCdevButton(chip string, offset int) (*CdevButton, error) {
	return nil, &HardwareInitError{Resource: "gpio chip " + chip, Err: errors.New("gpiocdev requires Linux")}
}

func (b *CdevButton) Register(handler EdgeHandler) error {
	return errors.New("gpiocdev: not supported")
}

func (b *CdevButton) Deregister() error {
	return nil
}

func (b *CdevButton) Read() (int, error) {
	return 0, errors.New("gpiocdev: not supported")
}

func (b *CdevButton) Close() error {
	return nil
}
