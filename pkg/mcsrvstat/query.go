package mcsrvstat

import (
	"fmt"

	"github.com/craftstat/craftstat/pkg/errors"
)

// Edition selects the Minecraft server variant to query. The two editions
// use different upstream endpoints and return different response shapes.
type Edition string

// Supported editions.
const (
	EditionJava    Edition = "java"
	EditionBedrock Edition = "bedrock"
)

// Valid reports whether e is a known edition.
func (e Edition) Valid() bool {
	return e == EditionJava || e == EditionBedrock
}

// DefaultPort returns the edition's conventional server port.
func (e Edition) DefaultPort() int {
	if e == EditionBedrock {
		return 19132
	}
	return 25565
}

// apiPath is the upstream path prefix for the edition (v3 API).
func (e Edition) apiPath() string {
	if e == EditionBedrock {
		return "bedrock/3/"
	}
	return "3/"
}

// Query identifies one server lookup. It doubles as the identity key for
// caching and request de-duplication, and is immutable once constructed.
type Query struct {
	Host    string  // hostname or IP, required
	Port    int     // 0 means the edition default
	Edition Edition // empty means Java
}

// withDefaults fills in the implied edition.
func (q Query) withDefaults() Query {
	if q.Edition == "" {
		q.Edition = EditionJava
	}
	return q
}

// Validate checks the query before any I/O happens. Violations surface as
// INVALID_QUERY and are never retried.
func (q Query) Validate() error {
	if err := errors.ValidateHost(q.Host); err != nil {
		return err
	}
	if err := errors.ValidatePort(q.Port); err != nil {
		return err
	}
	q = q.withDefaults()
	if !q.Edition.Valid() {
		return errors.New(errors.ErrCodeInvalidQuery, "unknown edition %q", q.Edition)
	}
	return nil
}

// Address renders the query as host or host:port, the form the upstream
// API expects in its request path.
func (q Query) Address() string {
	if q.Port > 0 {
		return fmt.Sprintf("%s:%d", q.Host, q.Port)
	}
	return q.Host
}

// Key is the cache and single-flight identity of the query. Two queries
// with the same key are interchangeable lookups.
func (q Query) Key() string {
	q = q.withDefaults()
	return fmt.Sprintf("%s:%s:%d", q.Edition, q.Host, q.Port)
}

// path is the upstream request path for the query.
func (q Query) path() string {
	q = q.withDefaults()
	return q.Edition.apiPath() + q.Address()
}
