// Package locale holds the static localization tables for DT-Response text.
// It maps language codes to month names and the date/time sentence templates
// used when rendering the current date or time for a client.
package locale
