package handler

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/postsmith/internal/service"
	"github.com/postsmith/internal/view"
)

const (
	generatorTemplate = "index.html"

	sessionKeyPlatform = "last_platform"
	sessionKeyGoal     = "last_goal"
	sessionKeyTone     = "last_tone"
	sessionKeyCount    = "last_count"

	defaultFormCount = "1"
)

// generateInput 是表单与 JSON 接口共用的原始输入，校验前不做类型转换。
type generateInput struct {
	Platform string
	Goal     string
	Tone     string
	Topic    string
	Count    string
}

// normalize 去除首尾空白，语气为空时使用平台默认语气。
func (in *generateInput) normalize() {
	in.Platform = strings.TrimSpace(in.Platform)
	in.Goal = strings.TrimSpace(in.Goal)
	in.Tone = strings.TrimSpace(in.Tone)
	in.Count = strings.TrimSpace(in.Count)
	if in.Tone == "" {
		if rule, err := service.LookupPlatform(in.Platform); err == nil {
			in.Tone = rule.DefaultTone
		}
	}
}

type postView struct {
	service.ExportRecord
	PreviewA template.HTML
	PreviewB template.HTML
}

type formState struct {
	Platform string
	Goal     string
	Tone     string
	Topic    string
	Count    string
}

// ShowGenerator 渲染生成表单，并回填上一次的选择。
func (a *API) ShowGenerator(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, generatorTemplate, a.formData(c, loadFormState(c), nil))
}

// Generate 处理表单提交：校验、可选的风格分析、批量生成并渲染结果。
func (a *API) Generate(c *gin.Context) {
	input := generateInput{
		Platform: c.PostForm("platform"),
		Goal:     c.PostForm("goal"),
		Tone:     c.PostForm("tone"),
		Topic:    c.PostForm("topic"),
		Count:    c.PostForm("count"),
	}
	input.normalize()

	state := formState(input)
	saveFormState(c, state)

	if messages := service.ValidateInputs(input.Platform, input.Goal, input.Tone, input.Topic, input.Count); len(messages) > 0 {
		err := &service.ValidationError{Messages: messages}
		a.renderHTML(c, http.StatusOK, generatorTemplate, a.formData(c, state, gin.H{"error": err.Error()}))
		return
	}

	persona := a.analyzeUpload(c)

	batch, req, err := a.runBatch(c.Request.Context(), input, persona, service.RunSourceWeb)
	if err != nil {
		a.logger.WithError(err).Error("Batch generation failed")
		a.renderHTML(c, http.StatusInternalServerError, generatorTemplate, a.formData(c, state, gin.H{"error": "Content generation failed. Please try again."}))
		return
	}

	postsJSON, err := service.EncodeRecords(batch.Records)
	if err != nil {
		a.logger.WithError(err).Error("Failed to encode posts")
		postsJSON = "[]"
	}

	views := make([]postView, 0, len(batch.Records))
	for _, record := range batch.Records {
		views = append(views, postView{
			ExportRecord: record,
			PreviewA:     view.PreviewMarkdown(record.VariantA),
			PreviewB:     view.PreviewMarkdown(record.VariantB),
		})
	}

	a.renderHTML(c, http.StatusOK, generatorTemplate, a.formData(c, state, gin.H{
		"posts":     views,
		"postsJSON": postsJSON,
		"persona":   req.Persona,
	}))
}

func (a *API) analyzeUpload(c *gin.Context) *service.Persona {
	header, err := c.FormFile("file")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			a.logger.WithError(err).Warn("Failed to read style upload")
		}
		return nil
	}
	if header.Filename == "" {
		return nil
	}
	file, err := header.Open()
	if err != nil {
		a.logger.WithError(err).WithField("file", header.Filename).Warn("Failed to open style upload")
		return nil
	}
	defer file.Close()

	return a.styles.Analyze(header.Filename, file)
}

// runBatch 在输入通过校验后执行批量生成，并写入运行记录。
func (a *API) runBatch(ctx context.Context, input generateInput, persona *service.Persona, source string) (service.BatchResult, service.GenerationRequest, error) {
	count, err := service.ParseCount(input.Count)
	if err != nil {
		return service.BatchResult{}, service.GenerationRequest{}, err
	}

	req := service.GenerationRequest{
		Platform: input.Platform,
		Goal:     input.Goal,
		Tone:     input.Tone,
		Topic:    strings.TrimSpace(input.Topic),
		Persona:  persona,
	}

	batch, err := a.content.GenerateBatch(ctx, req, count)
	if err != nil {
		return service.BatchResult{}, req, err
	}

	if err := a.ledger.Record(ctx, source, req, batch); err != nil {
		a.logger.WithError(err).Warn("Failed to record generation run")
	}
	return batch, req, nil
}

func (a *API) formData(c *gin.Context, state formState, extra gin.H) gin.H {
	data := gin.H{
		"title":     "Content Generator",
		"form":      state,
		"platforms": service.PlatformNames(),
		"goals":     service.GoalNames(),
		"tones":     service.ToneNames(),
		"maxCount":  service.MaxPostCount,
	}
	for key, value := range extra {
		data[key] = value
	}
	return data
}

func loadFormState(c *gin.Context) formState {
	session := sessions.Default(c)
	state := formState{
		Platform: sessionString(session, sessionKeyPlatform),
		Goal:     sessionString(session, sessionKeyGoal),
		Tone:     sessionString(session, sessionKeyTone),
		Count:    sessionString(session, sessionKeyCount),
	}
	if state.Count == "" {
		state.Count = defaultFormCount
	}
	return state
}

func saveFormState(c *gin.Context, state formState) {
	session := sessions.Default(c)
	session.Set(sessionKeyPlatform, state.Platform)
	session.Set(sessionKeyGoal, state.Goal)
	session.Set(sessionKeyTone, state.Tone)
	if _, err := strconv.Atoi(state.Count); err == nil {
		session.Set(sessionKeyCount, state.Count)
	}
	if err := session.Save(); err != nil {
		c.Error(err)
	}
}

func sessionString(session sessions.Session, key string) string {
	value, _ := session.Get(key).(string)
	return value
}
