package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/api/dto"
	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/service"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util"
)

// DashboardHandler serves the operator dashboard API.
type DashboardHandler struct {
	stats   *service.StatsService
	panels  *service.PanelService
	tokens  *auth.TokenManager
	authCfg config.AuthConfig
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(stats *service.StatsService, panels *service.PanelService, tokens *auth.TokenManager, authCfg config.AuthConfig) *DashboardHandler {
	return &DashboardHandler{stats: stats, panels: panels, tokens: tokens, authCfg: authCfg}
}

// Stats GET /api/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	view, err := h.stats.Overview(c.Context())
	if err != nil {
		return err
	}

	staffList := make([]dto.StaffEntryResponse, 0, len(view.StaffList))
	for _, entry := range view.StaffList {
		staffList = append(staffList, dto.StaffEntryResponse{
			Name:    entry.Name,
			Points:  entry.Points,
			IsStaff: entry.IsStaff,
		})
	}

	return c.JSON(dto.StatsResponse{
		StaffList:    staffList,
		TotalTickets: view.TotalTickets,
		Labels:       view.Labels,
		DataPoints:   view.DataPoints,
		Config:       view.Config,
		FirstGuildID: view.FirstGuildID,
	})
}

// Save POST /api/save.
func (h *DashboardHandler) Save(c *fiber.Ctx) error {
	in, err := parseSaveRequest(c)
	if err != nil {
		return err
	}
	if err := h.panels.Save(c.Context(), in); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Success"})
}

// SaveConfig POST /api/save-config.
func (h *DashboardHandler) SaveConfig(c *fiber.Ctx) error {
	in, err := parseSaveRequest(c)
	if err != nil {
		return err
	}
	if err := h.panels.SaveConfig(c.Context(), in); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Success"})
}

// Login POST /api/login. Only routed when admin auth is enabled.
func (h *DashboardHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := auth.ComparePassword(h.authCfg.AdminPasswordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := h.tokens.GenerateToken()
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{Token: token, ExpiresAt: expiresAt})
}

func parseSaveRequest(c *fiber.Ctx) (service.SaveInput, error) {
	var req dto.SaveRequest
	if err := c.BodyParser(&req); err != nil {
		return service.SaveInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.GuildID == "" || req.ChannelID == "" {
		return service.SaveInput{}, apperrors.NewValidationError("guildId and channelId required", nil)
	}
	return service.SaveInput{
		GuildID:    req.GuildID,
		ChannelID:  req.ChannelID,
		CategoryID: req.CategoryID,
		Options:    req.Options,
		PanelTitle: req.PanelTitle,
		PanelDesc:  req.PanelDesc,
		PanelImage: req.PanelImage,
	}, nil
}
