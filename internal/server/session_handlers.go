package server

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"resumechat/internal/common"
	"resumechat/internal/conversation"
	resumechatErrors "resumechat/internal/errors"
	"resumechat/internal/formatters"
	"resumechat/internal/resume"
	"resumechat/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type eventFunc func(ctx context.Context, sess *conversation.Session) (conversation.Result, error)

func (s *Server) startSpan(r *http.Request, name string) (context.Context, trace.Span) {
	ctx, span := s.Observability.Tracer("resumechat.api").Start(r.Context(), name)
	if id := r.PathValue("id"); id != "" {
		span.SetAttributes(attribute.String("session.id", id))
	}
	return ctx, span
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	errorType := "internal"
	if appErr, ok := resumechatErrors.As(err); ok {
		errorType = string(appErr.Type)
		span.SetAttributes(attribute.String("error.code", appErr.Code))
	}
	span.SetAttributes(attribute.String("error.type", errorType))
}

// runEvent applies one conversation event to the session named in the path
func (s *Server) runEvent(w http.ResponseWriter, r *http.Request, name string, fn eventFunc) {
	ctx, span := s.startSpan(r, "api."+name)
	defer span.End()

	id := r.PathValue("id")
	var result conversation.Result
	_, err := s.Sessions.Update(ctx, id, func(sess *conversation.Session) error {
		var err error
		result, err = fn(ctx, sess)
		return err
	})
	if err != nil {
		recordSpanError(span, err)
		writeAppError(w, err)
		return
	}

	span.SetAttributes(
		attribute.Int("session.step", result.Step),
		attribute.Int("response.turns", len(result.Turns)),
		attribute.Bool("session.awaiting_confirmation", result.AwaitingConfirmation),
	)
	writeJSON(w, http.StatusOK, EventResponse{SessionID: id, Result: result})
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.create_session")
	defer span.End()

	sess, err := s.Sessions.Create(ctx)
	if err != nil {
		recordSpanError(span, err)
		writeAppError(w, err)
		return
	}
	span.SetAttributes(attribute.String("session.id", sess.ID))
	writeJSON(w, http.StatusCreated, newSessionView(sess))
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.get_session")
	defer span.End()

	sess, err := s.Sessions.Get(ctx, r.PathValue("id"))
	if err != nil {
		recordSpanError(span, err)
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.delete_session")
	defer span.End()

	if err := s.Sessions.Delete(ctx, r.PathValue("id")); err != nil {
		recordSpanError(span, err)
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) basicInfoHandler(w http.ResponseWriter, r *http.Request) {
	var info resume.BasicInfo
	if err := parseJSONRequest(r, &info); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	s.runEvent(w, r, "basic_info", func(ctx context.Context, sess *conversation.Session) (conversation.Result, error) {
		return s.Controller.SubmitBasicInfo(ctx, sess, info)
	})
}

func (s *Server) messageHandler(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	s.runEvent(w, r, "message", func(ctx context.Context, sess *conversation.Session) (conversation.Result, error) {
		return s.Controller.Submit(ctx, sess, req.Text)
	})
}

func (s *Server) confirmHandler(w http.ResponseWriter, r *http.Request) {
	s.runEvent(w, r, "confirm", s.Controller.Confirm)
}

func (s *Server) declineHandler(w http.ResponseWriter, r *http.Request) {
	s.runEvent(w, r, "decline", s.Controller.Decline)
}

func (s *Server) editHandler(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	step := req.Step
	if req.Section != "" {
		var ok bool
		if step, ok = conversation.StepForSection(req.Section); !ok {
			writeAppError(w, resumechatErrors.NewValidationError(resumechatErrors.ErrCodeInvalidRequest,
				fmt.Sprintf("unknown section: %s", req.Section), nil).WithContext("field", "section"))
			return
		}
	}
	if step == 0 {
		writeAppError(w, resumechatErrors.NewValidationError(resumechatErrors.ErrCodeInvalidRequest,
			"step or section is required", nil).WithContext("field", "step"))
		return
	}

	s.runEvent(w, r, "edit", func(ctx context.Context, sess *conversation.Session) (conversation.Result, error) {
		return s.Controller.Edit(ctx, sess, step)
	})
}

func (s *Server) restartHandler(w http.ResponseWriter, r *http.Request) {
	s.runEvent(w, r, "restart", func(ctx context.Context, sess *conversation.Session) (conversation.Result, error) {
		return s.Controller.Restart(ctx, sess), nil
	})
}

// loadReview validates the requested format and renders the session's resume
func (s *Server) loadReview(ctx context.Context, w http.ResponseWriter, r *http.Request, span trace.Span) (*conversation.Session, conversation.Review, bool) {
	format, err := common.ResolveOutputFormat(r.URL.Query().Get("format"), s.DefaultFormat, s.SupportedFormats)
	if err != nil {
		recordSpanError(span, err)
		writeAppError(w, err)
		return nil, conversation.Review{}, false
	}

	sess, err := s.Sessions.Get(ctx, r.PathValue("id"))
	if err != nil {
		recordSpanError(span, err)
		writeAppError(w, err)
		return nil, conversation.Review{}, false
	}

	review := s.Controller.Review(ctx, sess, format)
	span.SetAttributes(
		attribute.String("resume.format", format),
		attribute.Int("resume.missing_fields", len(review.Missing)),
	)
	return sess, review, true
}

func (s *Server) reviewHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.review")
	defer span.End()

	_, review, ok := s.loadReview(ctx, w, r, span)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.download")
	defer span.End()

	sess, review, ok := s.loadReview(ctx, w, r, span)
	if !ok {
		return
	}
	if review.Error != "" {
		writeErrorResponse(w, "Rendering failed", review.Error, http.StatusUnprocessableEntity)
		return
	}

	filename := utils.ResumeFileName(sess.Data.BasicInfo.Name, formatters.FileExtension(review.Format))
	w.Header().Set("Content-Type", formatters.ContentType(review.Format))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(review.Document)); err != nil {
		s.Logger.LogError(err, "Failed to write resume download", "session_id", sess.ID)
	}
}
