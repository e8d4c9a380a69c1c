/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each package keeps a single configuration object stored under its own key.
Configuration is loaded from the "conf" section of the genesis file and can
later be read by any handler that has access to the store.
*/
package gconf
