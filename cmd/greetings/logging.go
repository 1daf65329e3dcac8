package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const requestIdHeader = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withLogging(h http.Handler) http.Handler {
	logFn := func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIdHeader)
		if id == "" {
			id = uuid.NewString()
		}
		rw.Header().Set(requestIdHeader, id)

		recorder := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
		h.ServeHTTP(recorder, r)

		log.WithFields(log.Fields{
			"request":  id,
			"uri":      r.RequestURI,
			"method":   r.Method,
			"status":   recorder.status,
			"duration": time.Since(start),
		}).Info()
	}
	return http.HandlerFunc(logFn)
}
