// Package region probes a geolocation endpoint to decide whether content
// downloads should prefer CDN mirrors over the direct origin.
package region
