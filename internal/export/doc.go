// Package export writes controller watering logs to spreadsheet files.
package export
