// Copyright 2025 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package scgiexec

import (
	"bytes"
	"fmt"
	"io"
)

// DefaultMaxHeaderLength is a sanity check on what the server sends.
const DefaultMaxHeaderLength = 262144

// Field is one SCGI header as it appears on the wire.
type Field struct {
	Name  string
	Value string
}

// Fields is an ordered list of SCGI headers. Names need not be unique;
// when installed into an environment the last occurrence wins.
type Fields []Field

// Get returns the value of the last field named name, or "".
func (f Fields) Get(name string) string {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i].Name == name {
			return f[i].Value
		}
	}
	return ""
}

// ReadFields reads one SCGI header block from r:
// a netstring "<length>:<name>\x00<value>\x00...," whose length covers
// everything between the colon and the trailing comma.
//
// Every bound is checked before the corresponding read or allocation, and
// the declared length is capped at maxLength, so a hostile peer can
// neither run the scan past the block nor make us allocate at will.
// All errors are of type *Error.
func ReadFields(r io.Reader, maxLength int) (Fields, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxHeaderLength
	}

	ch, err := readByte(r)
	if err != nil {
		return nil, err
	}
	if ch < '0' || ch > '9' {
		return nil, Errorf(StatusInternalError, "SCGI stream didn't start with a digit, started with char 0x%x", ch)
	}
	length := int(ch - '0')

	for {
		ch, err = readByte(r)
		if err != nil {
			return nil, err
		}
		if ch >= '0' && ch <= '9' {
			length = length*10 + int(ch-'0')
			if length < 0 || length > maxLength {
				return nil, Errorf(StatusInternalError, "SCGI Header length is not in the range 0..%d", maxLength)
			}
			continue
		}
		if ch == ':' {
			break
		}
		return nil, Errorf(StatusInvalidHeader, "Invalid character 0x%x in length", ch)
	}

	// +1 is for the comma after the headers.
	block := make([]byte, length+1)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, Errorf(StatusInternalError, "SCGI Header truncated")
	}
	if block[length] != ',' {
		return nil, Errorf(StatusInternalError, "SCGI Header: Incomplete netstring, missing comma")
	}

	var fields Fields
	for off := 0; off < length; {
		i := bytes.IndexByte(block[off:length], 0)
		if i < 0 {
			return nil, Errorf(StatusInternalError, "SCGI Header: Corrupt name/value table")
		}
		name := block[off : off+i]
		off += i + 1
		if off >= length {
			return nil, Errorf(StatusInternalError, "SCGI Header: Corrupt name/value table")
		}
		i = bytes.IndexByte(block[off:length], 0)
		if i < 0 {
			return nil, Errorf(StatusInternalError, "SCGI Header: Corrupt name/value table")
		}
		value := block[off : off+i]
		off += i + 1
		fields = append(fields, Field{Name: string(name), Value: string(value)})
	}

	return fields, nil
}

// Write encodes f in the wire format ReadFields reads.
func (f Fields) Write(w io.Writer) error {
	var body bytes.Buffer
	for _, field := range f {
		body.WriteString(field.Name)
		body.WriteByte(0)
		body.WriteString(field.Value)
		body.WriteByte(0)
	}
	if _, err := fmt.Fprintf(w, "%d:", body.Len()); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := w.Write([]byte{','})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, Errorf(StatusInternalError, "SCGI stream truncated")
	}
	return buf[0], nil
}
