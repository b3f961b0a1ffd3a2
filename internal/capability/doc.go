// Package capability provides the central glue between workflow nodes and
// the invocable units they reference by name.
//
// The Registry stores mappings between the dotted references used in
// workflow documents (e.g. "datapizza.modules.echo.Echo") and the compiled
// Go handlers that implement them, together with the manifest of argument
// slots each handler accepts. During application startup the registry is
// populated by capability modules and then validated against the HCL
// manifests to ensure the Go code and the public-facing declarations are in
// sync, preventing a wide class of runtime errors.
//
// Resolution is a trust boundary: references outside the allowed namespace
// are rejected outright, never coerced.
package capability
