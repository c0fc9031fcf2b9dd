// Package timezone pins every calendar computation to the studio's local zone, read from
// APP_TIMEZONE on first use. Session days and clocks are wall-clock values in that zone, so
// "today", cancellation windows and token expiry all agree regardless of where the server runs.
package timezone
