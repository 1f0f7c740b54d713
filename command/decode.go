package command

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
)

type (
	// Script bundles the commands parsed from a script with the script text itself.
	// The text is needed to capture view statements by their character offsets.
	Script struct {
		Text     string `json:"script"`
		Commands List   `json:"commands"`
	}

	// Decoder decodes a stream of commands, one JSON object after the other
	// (usually newline delimited).
	Decoder struct {
		d   *json.Decoder
		err error
	}

	// UnmarshalError is returned when decoding fails.
	UnmarshalError struct {
		// Err is the error returned by [json.Unmarshal].
		Err error
		// Data is the data that caused the error, useful for debugging.
		Data string
	}
)

// Decode reads a JSON array of commands from r.
// If you need the data that failed to decode:
//
//	var errDetails UnmarshalError
//	if errors.As(err, &errDetails) {
//	    fmt.Println(errDetails.Data)
//	}
func Decode(r io.Reader) (List, error) {
	return unmarshal[List](r)
}

// DecodeScript reads a [Script] from r.
func DecodeScript(r io.Reader) (Script, error) {
	return unmarshal[Script](r)
}

// DecodeScriptFile calls [DecodeScript] with the opened file (closing it afterwards).
func DecodeScriptFile(path string) (Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return Script{}, fmt.Errorf("opening script file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	s, err := DecodeScript(f)
	if err != nil {
		return Script{}, fmt.Errorf("decoding %q: %w", path, err)
	}
	return s, nil
}

// NewDecoder creates a new streaming decoder of commands.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{d: json.NewDecoder(r)}
}

// All returns a single-use iterator over the stream.
// Check [Decoder.Error] once iteration is done.
func (d *Decoder) All() iter.Seq[Command] {
	return func(yield func(Command) bool) {
		for d.d.More() {
			var c Command
			if err := d.d.Decode(&c); err != nil {
				d.err = err
				return
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Error returns the error that interrupted iteration or nil if no error happened.
func (d *Decoder) Error() error {
	return d.err
}

func (e UnmarshalError) Error() string {
	return e.Err.Error()
}

func (e UnmarshalError) Unwrap() error {
	return e.Err
}

func unmarshal[T any](r io.Reader) (T, error) {
	var v T
	data, err := io.ReadAll(r)
	if err != nil {
		return v, fmt.Errorf("reading stream: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, UnmarshalError{err, string(data)}
	}
	return v, nil
}
