package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/awareness-backend/internal/http/response"
	certmod "github.com/yungbote/awareness-backend/internal/modules/certification"
	"github.com/yungbote/awareness-backend/internal/platform/ctxutil"
)

type QuizHandler struct {
	cert certmod.Usecases
}

func NewQuizHandler(cert certmod.Usecases) *QuizHandler {
	return &QuizHandler{cert: cert}
}

type submitAnswerRequest struct {
	QuestionID          string `json:"question_id"`
	SelectedAnswerIndex *int   `json:"selected_answer_index"`
}

type submitQuizRequest struct {
	Answers          []submitAnswerRequest `json:"answers"`
	TimeTakenSeconds *int                  `json:"time_taken_seconds"`
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// GET /api/quiz/questions
func (h *QuizHandler) Questions(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	out, err := h.cert.Questions(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err, "load_questions_failed")
		return
	}
	response.RespondOK(c, out)
}

// POST /api/quiz/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<16)

	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "answers_required", err)
		return
	}
	answers := make([]certmod.SubmitAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, certmod.SubmitAnswer{QuestionID: a.QuestionID, Selected: a.SelectedAnswerIndex})
	}
	out, err := h.cert.Submit(c.Request.Context(), certmod.SubmitInput{
		UserID:           userID,
		Answers:          answers,
		TimeTakenSeconds: req.TimeTakenSeconds,
	})
	if err != nil {
		response.RespondAPIError(c, err, "submission_failed")
		return
	}
	response.RespondOK(c, out)
}

// GET /api/quiz/history
func (h *QuizHandler) History(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	rows, err := h.cert.History(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err, "load_attempts_failed")
		return
	}
	response.RespondOK(c, gin.H{"attempts": rows})
}

// GET /api/quiz/can-take
func (h *QuizHandler) CanTake(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	out, err := h.cert.CanTake(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err, "eligibility_failed")
		return
	}
	response.RespondOK(c, out)
}

// GET /api/quiz/stats
func (h *QuizHandler) Stats(c *gin.Context) {
	out, err := h.cert.Stats(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "load_stats_failed")
		return
	}
	response.RespondOK(c, out)
}
