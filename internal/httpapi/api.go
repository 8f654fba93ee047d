package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mindwell-app/mindwell/internal/bootstrap"
	"github.com/mindwell-app/mindwell/internal/dto"
	"github.com/mindwell-app/mindwell/internal/schema"
	"github.com/mindwell-app/mindwell/internal/service"
)

type apiServer struct {
	core      *bootstrap.Core
	startTime time.Time
}

func newAPI(core *bootstrap.Core) *apiServer {
	return &apiServer{core: core, startTime: time.Now()}
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"name":           a.core.Cfg.App.Name,
		"version":        a.core.Cfg.App.Version,
		"started_at":     a.startTime.Format(time.RFC3339),
		"safe_mode":      a.core.DB.SafeMode,
		"schema_version": a.core.DB.SchemaVersion,
	})
}

// handleSSE 推送进度事件流（score.updated / streak.updated / badge.earned）
func (a *apiServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "stream not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	sub := a.core.Hub.Subscribe(ctx, 32)

	// initial event
	_, _ = io.WriteString(w, "event: ready\n")
	_, _ = io.WriteString(w, "data: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, "event: ping\n")
			_, _ = io.WriteString(w, "data: {}\n\n")
			flusher.Flush()
		case evt, ok := <-sub:
			if !ok {
				return
			}
			b, _ := json.Marshal(evt)
			_, _ = io.WriteString(w, "event: "+sanitizeSSEName(evt.Type)+"\n")
			_, _ = io.WriteString(w, "data: ")
			_, _ = w.Write(b)
			_, _ = io.WriteString(w, "\n\n")
			flusher.Flush()
		}
	}
}

func (a *apiServer) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	if a.rejectSafeMode(w) {
		return
	}

	var req dto.RecordActivityRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体不合法: "+err.Error())
		return
	}

	result, err := a.core.Services.Progression.RecordActivity(r.Context(), service.RecordInput{
		AccountID: req.AccountID,
		Kind:      req.Kind,
		DedupKey:  req.DedupKey,
		Points:    req.Points,
		Metadata:  schema.JSONMap(req.Metadata),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RecordActivityResponse{
		EventID:       result.EventID,
		Applied:       result.Applied,
		Points:        result.Points,
		NewScore:      result.NewScore,
		CurrentStreak: result.Streak.Current,
		LongestStreak: result.Streak.Longest,
	})
}

func (a *apiServer) handleStatistics(w http.ResponseWriter, r *http.Request) {
	snap, err := a.core.Services.Progression.GetStatistics(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.StatisticsResponse{
		AccountID:     snap.AccountID,
		Counters:      snap.Counters,
		Score:         snap.Score,
		Experience:    snap.Experience,
		Coins:         snap.Coins,
		CurrentStreak: snap.CurrentStreak,
		LongestStreak: snap.LongestStreak,
	})
}

func (a *apiServer) handleEvaluateBadges(w http.ResponseWriter, r *http.Request) {
	if a.rejectSafeMode(w) {
		return
	}

	awards, err := a.core.Services.Badges.Evaluate(r.Context(), r.PathValue("id"))

	out := make([]dto.BadgeAwardDTO, 0, len(awards))
	for _, award := range awards {
		out = append(out, dto.BadgeAwardDTO{BadgeKey: award.BadgeKey, EarnedAt: award.EarnedAt})
	}
	if err != nil {
		if len(out) == 0 {
			writeServiceError(w, err)
			return
		}
		// 部分发放成功：成果照常返回，失败一并带出，整体按可重试处理
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"earned": out, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"earned": out})
}

// handleActivities 查询台账事件：带 date 查某个 UTC 日历日，否则查最近 N 条
func (a *apiServer) handleActivities(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")

	var events []schema.ActivityEvent
	var err error
	if date := r.URL.Query().Get("date"); date != "" {
		if _, perr := time.ParseInLocation("2006-01-02", date, time.UTC); perr != nil {
			writeError(w, http.StatusBadRequest, "date 必须是 YYYY-MM-DD")
			return
		}
		events, err = a.core.Services.Progression.ActivitiesOnDate(r.Context(), accountID, date)
	} else {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, aerr := strconv.Atoi(raw); aerr == nil && n > 0 {
				limit = n
			}
		}
		events, err = a.core.Services.Progression.RecentActivities(r.Context(), accountID, limit)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]dto.ActivityDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, dto.ActivityDTO{
			ID:            ev.ID,
			Kind:          ev.Kind,
			Points:        ev.Points,
			Timestamp:     ev.Timestamp,
			RelatedPostID: schema.GetInt64(ev.Metadata, "related_post_id"),
			Source:        schema.GetString(ev.Metadata, "source"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": out})
}

func (a *apiServer) handleListAwards(w http.ResponseWriter, r *http.Request) {
	awards, err := a.core.Services.Badges.ListAwards(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]dto.BadgeAwardDTO, 0, len(awards))
	for _, award := range awards {
		out = append(out, dto.BadgeAwardDTO{BadgeKey: award.BadgeKey, EarnedAt: award.EarnedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"awards": out})
}

func (a *apiServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	defs, err := a.core.Services.Badges.GetCatalog(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]dto.BadgeDTO, 0, len(defs))
	for _, def := range defs {
		out = append(out, dto.BadgeDTO{
			Key:         def.Key,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Layer:       def.Layer,
			Counter:     def.Counter,
			Threshold:   def.Threshold,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"badges": out})
}

func (a *apiServer) handleStability(w http.ResponseWriter, r *http.Request) {
	var req dto.StabilityRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体不合法: "+err.Error())
		return
	}
	if req.Persist && a.rejectSafeMode(w) {
		return
	}

	result, err := a.core.Services.Stability.Evaluate(r.Context(), req.AccountID, service.StabilityVector{
		Resources: req.Resources,
		Local:     req.Local,
		Global:    req.Global,
		Coupling:  req.Coupling,
		Agreement: req.Agreement,
		Scaling:   req.Scaling,
	}, req.Persist)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := dto.StabilityResponse{Valid: result.Valid}
	if result.Valid {
		score := result.Score
		resp.Score = &score
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *apiServer) handleStabilityHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := a.core.Services.Stability.History(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

// rejectSafeMode 安全模式下拒绝写入
func (a *apiServer) rejectSafeMode(w http.ResponseWriter) bool {
	if a.core.DB.SafeMode {
		writeError(w, http.StatusServiceUnavailable, "数据库处于安全模式，拒绝写入: "+a.core.DB.MigrationError)
		return true
	}
	return false
}

// writeServiceError 校验类错误返回 400，其余按存储错误返回 503（调用方可重试）
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownEventKind),
		errors.Is(err, service.ErrNegativePoints),
		errors.Is(err, service.ErrInvalidVector),
		errors.Is(err, service.ErrAccountRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	}
}

func sanitizeSSEName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return "message"
	}
	n = strings.ReplaceAll(n, "\n", "")
	n = strings.ReplaceAll(n, "\r", "")
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func readJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
