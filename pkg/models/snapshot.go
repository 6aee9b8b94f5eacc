package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInvalidSnapshot marks a snapshot that is missing required fields.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// DecodeState reads a JSON snapshot and validates it.
func DecodeState(r io.Reader) (*State, error) {
	var s State
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadStateFromFile decodes the snapshot stored at path.
func LoadStateFromFile(path string) (*State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return DecodeState(f)
}

// Validate reports the first required field that is missing.
func (s *State) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil state", ErrInvalidSnapshot)
	}
	if strings.TrimSpace(s.MetaMask.SelectedAddress) == "" {
		return fmt.Errorf("%w: metamask.selectedAddress is empty", ErrInvalidSnapshot)
	}
	if strings.TrimSpace(s.MetaMask.Network) == "" {
		return fmt.Errorf("%w: metamask.network is empty", ErrInvalidSnapshot)
	}
	if s.MetaMask.ConversionRate.IsNegative() {
		return fmt.Errorf("%w: metamask.conversionRate is negative", ErrInvalidSnapshot)
	}
	return nil
}
