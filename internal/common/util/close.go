package util

import (
	log "github.com/sirupsen/logrus"
)

type closer interface {
	Close()
}

type errCloser interface {
	Close() error
}

// CloseResource closes c, logging rather than returning any failure. c may implement either
// Close() or Close() error.
func CloseResource(name string, c any) {
	switch r := c.(type) {
	case errCloser:
		if err := r.Close(); err != nil {
			log.WithError(err).Warnf("Failed to close %s cleanly", name)
		}
	case closer:
		r.Close()
	}
}
