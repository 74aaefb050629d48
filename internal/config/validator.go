// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateDocument` immediately after it
// unmarshals the merged Koanf tree.  Any missing section or required key
// aborts startup, so the binary never runs with partial configuration.
//
// The only rule we rely on is `required`.  Field names are reported by
// their `koanf` tag, which makes every failure name the dotted key path an
// operator would set (`server.host`, `auth.secret`).
//
// Notes
// -----
//   • `server.port` is checked against the raw tree instead of a tag,
//     because 0 is a legal port value and `required` rejects zero values.
//   • Oxford commas, two spaces after periods.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	koanf "github.com/knadh/koanf/v2"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// keysWithoutTag must be present in the tree even though their zero value
// is legal.
var keysWithoutTag = []string{"server.port"}

//
// public API
//

// validateDocument reports every missing key in one error.  The message
// lists dotted key paths; the validator error stays reachable via Unwrap.
func validateDocument(k *koanf.Koanf, d *document) error {
	var missing []string

	err := v.Struct(d)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			missing = append(missing, keyPath(fe.Namespace()))
		}
	}

	if d.Server != nil {
		for _, key := range keysWithoutTag {
			if !k.Exists(key) {
				missing = append(missing, key)
			}
		}
	}

	if len(missing) == 0 {
		return nil
	}
	msg := "missing required configuration key(s): " + strings.Join(missing, ", ")
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return errors.New(msg)
}

// keyPath drops the root struct name from a validator namespace
// ("document.server.host" → "server.host").
func keyPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
