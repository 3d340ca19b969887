package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"apptbook/internal/domain"
	"apptbook/internal/service/appointments"
	"apptbook/internal/timeutil"
)

type appointmentRequest struct {
	UserID      int64  `json:"user_id"`
	CustomerID  int64  `json:"customer_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Contact     string `json:"contact"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	TimeZone    string `json:"time_zone"`
	Actor       string `json:"actor"`
	ExcludeID   int64  `json:"exclude_id,omitempty"`
}

type appointmentResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CustomerID  int64     `json:"customer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Contact     string    `json:"contact,omitempty"`
	Type        string    `json:"type"`
	URL         string    `json:"url,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by"`
}

func toResponse(a domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		CustomerID:  a.CustomerID,
		Title:       a.Title,
		Description: a.Description,
		Location:    a.Location,
		Contact:     a.Contact,
		Type:        a.Type,
		URL:         a.URL,
		StartTime:   a.StartTime.UTC(),
		EndTime:     a.EndTime.UTC(),
		CreatedAt:   a.CreatedAt.UTC(),
		CreatedBy:   a.CreatedBy,
		UpdatedAt:   a.UpdatedAt.UTC(),
		UpdatedBy:   a.UpdatedBy,
	}
}

func toResponses(rows []domain.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, toResponse(a))
	}
	return out
}

// decodeSaveInput reads the request body and resolves its timestamps. RFC3339
// values carry their own zone; naive values are interpreted in the request's
// time_zone, falling back to the server default.
func (s *Server) decodeSaveInput(r *http.Request) (appointments.SaveInput, int64, error) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return appointments.SaveInput{}, 0, badRequest("invalid JSON body")
	}

	loc := s.conv.Local()
	if req.TimeZone != "" {
		var err error
		loc, err = time.LoadLocation(req.TimeZone)
		if err != nil {
			return appointments.SaveInput{}, 0, badRequest("unknown time_zone " + strconv.Quote(req.TimeZone))
		}
	}

	start, err := timeutil.ParseTimestamp(req.StartTime, loc)
	if err != nil {
		return appointments.SaveInput{}, 0, badRequest("invalid start_time")
	}
	end, err := timeutil.ParseTimestamp(req.EndTime, loc)
	if err != nil {
		return appointments.SaveInput{}, 0, badRequest("invalid end_time")
	}

	return appointments.SaveInput{
		UserID:      req.UserID,
		CustomerID:  req.CustomerID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Contact:     req.Contact,
		Type:        req.Type,
		URL:         req.URL,
		Start:       start,
		End:         end,
		Actor:       req.Actor,
	}, req.ExcludeID, nil
}

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error { return &requestError{msg: msg} }

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	in, _, err := s.decodeSaveInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, res, err := s.svc.Schedule(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !res.OK {
		writeRejection(w, res)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(saved))
}

func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, _, err := s.decodeSaveInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, res, err := s.svc.Reschedule(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !res.OK {
		writeRejection(w, res)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(saved))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	in, excludeID, err := s.decodeSaveInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.svc.Validate(r.Context(), in, excludeID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, validationResponse{Valid: res.OK, Reason: string(res.Reason)})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(a))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.Cancel(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListByUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := s.svc.ListByUser(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(rows))
}

func (s *Server) handleListByCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := s.svc.ListByCustomer(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(rows))
}

func (s *Server) handleListByDay(w http.ResponseWriter, r *http.Request) {
	day, loc, err := s.dateParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := s.svc.ListByDay(r.Context(), day.Year(), day.Month(), day.Day(), loc)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(rows))
}

type businessWindowResponse struct {
	Date     string    `json:"date"`
	TimeZone string    `json:"time_zone"`
	Open     time.Time `json:"open"`
	Close    time.Time `json:"close"`
}

func (s *Server) handleBusinessWindow(w http.ResponseWriter, r *http.Request) {
	day, loc, err := s.dateParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	open, closeAt := s.hours.LocalWindowForDate(day.Year(), day.Month(), day.Day(), loc)
	writeJSON(w, http.StatusOK, businessWindowResponse{
		Date:     day.Format("2006-01-02"),
		TimeZone: loc.String(),
		Open:     open,
		Close:    closeAt,
	})
}

type typeCountResponse struct {
	Month string `json:"month"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func (s *Server) handleTypeCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.TypeCountsByMonth(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]typeCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, typeCountResponse{
			Month: c.Month.Format("2006-01"),
			Type:  c.Type,
			Count: c.Count,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type customerCountResponse struct {
	CustomerID int64 `json:"customer_id"`
	Count      int   `json:"count"`
}

func (s *Server) handleCustomerCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.CountsByCustomer(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]customerCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, customerCountResponse{CustomerID: c.CustomerID, Count: c.Count})
	}
	writeJSON(w, http.StatusOK, out)
}

type userScheduleResponse struct {
	UserID       int64                 `json:"user_id"`
	Appointments []appointmentResponse `json:"appointments"`
}

func (s *Server) handleUserSchedule(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.UserSchedule(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	// Rows arrive ordered by user then start time, so grouping is a single
	// pass.
	out := []userScheduleResponse{}
	for _, a := range rows {
		if len(out) == 0 || out[len(out)-1].UserID != a.UserID {
			out = append(out, userScheduleResponse{UserID: a.UserID})
		}
		last := &out[len(out)-1]
		last.Appointments = append(last.Appointments, toResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id " + strconv.Quote(raw))
	}
	return id, nil
}

// dateParams reads the day and time_zone query parameters shared by the
// day-listing and business-window endpoints.
func (s *Server) dateParams(r *http.Request) (time.Time, *time.Location, error) {
	raw := r.URL.Query().Get("day")
	if raw == "" {
		raw = r.URL.Query().Get("date")
	}
	if raw == "" {
		return time.Time{}, nil, badRequest("missing day parameter")
	}

	loc := s.conv.Local()
	if tz := r.URL.Query().Get("time_zone"); tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, nil, badRequest("unknown time_zone " + strconv.Quote(tz))
		}
	}

	day, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, nil, badRequest("invalid day " + strconv.Quote(raw))
	}
	return day, loc, nil
}
