package scgiexec

import (
	"bytes"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestFieldsRoundTrip(t *testing.T) {
	c := qt.New(t)

	f1 := Fields{
		{Name: "CONTENT_LENGTH", Value: "27"},
		{Name: "SCGI", Value: "1"},
		{Name: "SCRIPT_FILENAME", Value: "/bin/true"},
	}

	var b bytes.Buffer
	c.Assert(f1.Write(&b), qt.IsNil)

	f2, err := ReadFields(&b, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(f2, qt.DeepEquals, f1)
}

func TestReadFields(t *testing.T) {
	c := qt.New(t)

	read := func(s string, maxLength int) (Fields, error) {
		return ReadFields(strings.NewReader(s), maxLength)
	}

	// readErr is for the failure cases, where the typed error's status
	// and message are the contract.
	readErr := func(c *qt.C, s string, maxLength int) *Error {
		_, err := read(s, maxLength)
		if err == nil {
			c.Fatalf("expected decode of %q to fail", s)
		}
		return err.(*Error)
	}

	c.Run("Empty block", func(c *qt.C) {
		fields, err := read("0:,", 0)
		c.Assert(err, qt.IsNil)
		c.Assert(len(fields), qt.Equals, 0)
	})

	c.Run("Empty value", func(c *qt.C) {
		fields, err := read("14:QUERY_STRING\x00\x00,", 0)
		c.Assert(err, qt.IsNil)
		c.Assert(fields, qt.DeepEquals, Fields{{Name: "QUERY_STRING", Value: ""}})
	})

	c.Run("Duplicates preserved in order", func(c *qt.C) {
		fields, err := read("12:A\x001\x00B\x002\x00A\x003\x00,", 0)
		c.Assert(err, qt.IsNil)
		c.Assert(fields, qt.DeepEquals, Fields{{"A", "1"}, {"B", "2"}, {"A", "3"}})
		c.Assert(fields.Get("A"), qt.Equals, "3")
		c.Assert(fields.Get("C"), qt.Equals, "")
	})

	c.Run("Not starting with a digit", func(c *qt.C) {
		err := readErr(c, "x:,", 0)
		c.Assert(err.Status, qt.Equals, StatusInternalError)
		c.Assert(err.Message, qt.Equals, "SCGI stream didn't start with a digit, started with char 0x78")
	})

	c.Run("Invalid character in length", func(c *qt.C) {
		err := readErr(c, "12;,", 0)
		c.Assert(err.Status, qt.Equals, StatusInvalidHeader)
		c.Assert(err.Message, qt.Equals, "Invalid character 0x3b in length")
	})

	c.Run("Length over the ceiling", func(c *qt.C) {
		// No body at all: the length must be rejected before anything
		// gets read or allocated.
		err := readErr(c, "99999999", 1024)
		c.Assert(err.Message, qt.Equals, "SCGI Header length is not in the range 0..1024")
	})

	c.Run("Truncated stream", func(c *qt.C) {
		full := "39:CONTENT_LENGTH\x0027\x00SCGI\x001\x00SCRIPT_FI"
		err := readErr(c, full[:23], 0)
		c.Assert(err.Message, qt.Equals, "SCGI Header truncated")
	})

	c.Run("Truncated length", func(c *qt.C) {
		err := readErr(c, "39", 0)
		c.Assert(err.Message, qt.Equals, "SCGI stream truncated")
	})

	c.Run("Missing comma", func(c *qt.C) {
		err := readErr(c, "4:A\x001\x00x", 0)
		c.Assert(err.Message, qt.Equals, "SCGI Header: Incomplete netstring, missing comma")
	})

	c.Run("Name without value", func(c *qt.C) {
		err := readErr(c, "2:A\x00,", 0)
		c.Assert(err.Message, qt.Equals, "SCGI Header: Corrupt name/value table")
	})

	c.Run("Unterminated name", func(c *qt.C) {
		err := readErr(c, "2:AB,", 0)
		c.Assert(err.Message, qt.Equals, "SCGI Header: Corrupt name/value table")
	})

	c.Run("Unterminated value", func(c *qt.C) {
		err := readErr(c, "4:A\x001x,", 0)
		c.Assert(err.Message, qt.Equals, "SCGI Header: Corrupt name/value table")
	})
}
