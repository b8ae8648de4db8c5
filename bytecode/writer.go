package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"

	"ark/errs"
	"ark/types"
)

// Write encodes img to w in the on-disk format described in format.go.
// Not required by the VM itself, but needed to round-trip the reader in
// tests.
func Write(w io.Writer, img *Image) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{img.Version.Major, img.Version.Minor, img.Version.Patch}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, img.Timestamp); err != nil {
		return err
	}

	if err := writeSymTable(w, img.Symbols); err != nil {
		return err
	}
	if err := writeValTable(w, img.Constants); err != nil {
		return err
	}
	if err := writePlugins(w, img.Plugins); err != nil {
		return err
	}
	for _, page := range img.Pages {
		if err := writeCodeSection(w, page); err != nil {
			return err
		}
	}
	return nil
}

func writeU16(w io.Writer, v uint16) error {
	return binary.Write(w, binary.BigEndian, v)
}

func writeCString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}

func writeSymTable(w io.Writer, symbols []string) error {
	if len(symbols) > 0xFFFF {
		return fmt.Errorf("too many symbols: %d", len(symbols))
	}
	if _, err := w.Write([]byte{sectionSymTable}); err != nil {
		return err
	}
	if err := writeU16(w, uint16(len(symbols))); err != nil {
		return err
	}
	for _, s := range symbols {
		if err := writeCString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func writeValTable(w io.Writer, constants []types.Value) error {
	if len(constants) > 0xFFFF {
		return fmt.Errorf("too many constants: %d", len(constants))
	}
	if _, err := w.Write([]byte{sectionValTable}); err != nil {
		return err
	}
	if err := writeU16(w, uint16(len(constants))); err != nil {
		return err
	}
	for _, c := range constants {
		switch c.Kind() {
		case types.KindNumber:
			if _, err := w.Write([]byte{valKindNumber}); err != nil {
				return err
			}
			if err := writeCString(w, c.String()); err != nil {
				return err
			}
		case types.KindString:
			if _, err := w.Write([]byte{valKindString}); err != nil {
				return err
			}
			s, _ := c.Str()
			if err := writeCString(w, s); err != nil {
				return err
			}
		case types.KindPageAddr:
			if _, err := w.Write([]byte{valKindPage}); err != nil {
				return err
			}
			p, _ := c.PageAddr()
			if err := writeU16(w, uint16(p)); err != nil {
				return err
			}
		default:
			return errs.Malformed("ValTable cannot encode a constant of kind %s", c.Kind())
		}
	}
	return nil
}

func writePlugins(w io.Writer, plugins []string) error {
	if len(plugins) > 0xFFFF {
		return fmt.Errorf("too many plugins: %d", len(plugins))
	}
	if _, err := w.Write([]byte{sectionPlugins}); err != nil {
		return err
	}
	if err := writeU16(w, uint16(len(plugins))); err != nil {
		return err
	}
	for _, p := range plugins {
		if err := writeCString(w, p); err != nil {
			return err
		}
	}
	return nil
}

func writeCodeSection(w io.Writer, code []byte) error {
	if len(code) > 0xFFFF {
		return fmt.Errorf("code section too large: %d bytes", len(code))
	}
	if _, err := w.Write([]byte{sectionCode}); err != nil {
		return err
	}
	if err := writeU16(w, uint16(len(code))); err != nil {
		return err
	}
	_, err := w.Write(code)
	return err
}
