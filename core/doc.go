// Package core contains the leak API domain: request construction and
// validation, response normalization, the error taxonomy and the per-item
// node executor. Transport, authentication and storage adapters depend on
// this package; core must not depend on them.
package core
