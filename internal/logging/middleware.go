package logging

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware gives every request an id and a LogData, and logs one line when the
// request finishes.
func Middleware(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			requestID := req.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			logData := NewLogData(log)
			logData.AddData("requestID", requestID)
			logData.AddData("method", req.Method)
			logData.AddData("path", req.URL.Path)

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			endTimer := logData.AddTiming("requestDuration")
			next.ServeHTTP(recorder, req.WithContext(WithLogData(req.Context(), logData)))
			endTimer()

			logData.AddData("status", recorder.status)
			entry := logData.Log()
			if recorder.status >= http.StatusInternalServerError {
				entry.Error("Request.Complete")
				return
			}
			entry.Info("Request.Complete")
		})
	}
}
