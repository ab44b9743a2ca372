package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memwallet/memwallet/server/service/questionnaire"
)

type createProfileRequest struct {
	Persona string `json:"persona"`
	// UserID is the legacy field name for persona kept for older clients.
	UserID string `json:"user_id"`
}

type updateAnswerRequest struct {
	Persona    string `json:"persona"`
	QuestionID string `json:"question_id"`
	AnswerText string `json:"answer_text"`
}

type createSubProfileRequest struct {
	Persona     string   `json:"persona"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
}

type addQuestionRequest struct {
	Persona      string   `json:"persona"`
	SubProfileID string   `json:"sub_profile_id"`
	QuestionText string   `json:"question_text"`
	QuestionType string   `json:"question_type"`
	Options      []string `json:"options"`
	Required     *bool    `json:"required"`
	Order        int      `json:"order"`
}

type profileResponse struct {
	Success bool                   `json:"success"`
	Profile *questionnaire.Profile `json:"profile"`
	Message string                 `json:"message,omitempty"`
}

// GetUserProfile returns the persona's questionnaire, creating the
// default one on first access.
// GET /api/v1/profile
func (s *APIV1Service) GetUserProfile(c echo.Context) error {
	persona := s.personaOrDefault(c, "")
	return c.JSON(http.StatusOK, profileResponse{
		Success: true,
		Profile: s.QuestionnaireService.GetProfile(persona),
	})
}

// CreateUserProfile creates the persona's questionnaire explicitly and
// fails when one already exists.
// POST /api/v1/profile
func (s *APIV1Service) CreateUserProfile(c echo.Context) error {
	request := &createProfileRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	explicit := request.Persona
	if explicit == "" {
		explicit = request.UserID
	}

	profile, err := s.QuestionnaireService.CreateProfile(s.personaOrDefault(c, explicit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profileResponse{
		Success: true,
		Profile: profile,
		Message: "Profile created successfully",
	})
}

// UpdateAnswer records an answer and syncs the derived memory card.
// POST /api/v1/profile/answer
func (s *APIV1Service) UpdateAnswer(c echo.Context) error {
	ctx := c.Request().Context()
	request := &updateAnswerRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	persona := s.personaOrDefault(c, request.Persona)

	answer, err := s.QuestionnaireService.Answer(ctx, persona, request.QuestionID, request.AnswerText)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"answer":  answer,
		"message": "Answer updated successfully",
	})
}

// CreateSubProfile adds a topical sub-profile to the questionnaire.
// POST /api/v1/profile/sub-profile
func (s *APIV1Service) CreateSubProfile(c echo.Context) error {
	request := &createSubProfileRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	persona := s.personaOrDefault(c, request.Persona)

	sub, err := s.QuestionnaireService.AddSubProfile(persona, request.Name, request.Description, request.Categories)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":     true,
		"sub_profile": sub,
		"message":     "Sub-profile created successfully",
	})
}

// AddQuestion appends a question to the main profile or a sub-profile.
// POST /api/v1/profile/question
func (s *APIV1Service) AddQuestion(c echo.Context) error {
	request := &addQuestionRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	persona := s.personaOrDefault(c, request.Persona)

	questionType := questionnaire.QuestionType(request.QuestionType)
	if request.QuestionType != "" && !questionType.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid question type %q", request.QuestionType)})
	}
	required := true
	if request.Required != nil {
		required = *request.Required
	}
	question, err := s.QuestionnaireService.AddQuestion(persona, request.SubProfileID, &questionnaire.Question{
		Text:     request.QuestionText,
		Type:     questionType,
		Options:  request.Options,
		Required: required,
		Order:    request.Order,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"question": question,
		"message":  "Question added successfully",
	})
}
