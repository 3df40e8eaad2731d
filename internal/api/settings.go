package api

import (
	"fmt"
	"net/http"

	"defaultreset/internal/reset"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// nonceAction binds settings tokens to this form
const nonceAction = "default-reset-quantity"

type settingsView struct {
	AutoReset string
	Status    reset.Status
	Nonce     string
	Messages  []string
	Error     string
}

func (s *Server) handleSettings(c *gin.Context) {
	s.renderSettings(c, http.StatusOK, nil, "")
}

// handleSettingsPost runs the submitted actions in form order: reset,
// set, save. The token is checked before any of them.
func (s *Server) handleSettingsPost(c *gin.Context) {
	ctx := c.Request.Context()
	_, doReset := c.GetPostForm("reset")
	_, doSet := c.GetPostForm("set")
	_, doSave := c.GetPostForm("save")

	if !doReset && !doSet && !doSave {
		s.renderSettings(c, http.StatusBadRequest, nil, "No action requested.")
		return
	}

	if err := s.Nonces.Verify(c.PostForm("_wpnonce"), nonceAction); err != nil {
		s.Logger.Warn("rejected settings post", zap.Error(err), zap.String("remote", c.ClientIP()))
		s.renderSettings(c, http.StatusForbidden, nil, "The link you followed has expired.")
		return
	}

	var messages []string

	if doReset {
		report, err := s.Resetter.ResetQuantities(ctx, reset.TriggerManual)
		if err != nil {
			s.Logger.Error("manual reset failed", zap.Error(err))
			s.renderSettings(c, http.StatusInternalServerError, messages, "Resetting quantities failed.")
			return
		}
		s.Hub.Broadcast(newEvent(EventReset, report))
		messages = append(messages, fmt.Sprintf("Reset quantities of all products (%d custom, %d zeroed).", report.Custom, report.Zeroed))
	}

	if doSet {
		report, err := s.Resetter.SetQuantities(ctx)
		if err != nil {
			s.Logger.Error("debug set failed", zap.Error(err))
			s.renderSettings(c, http.StatusInternalServerError, messages, "Setting quantities failed.")
			return
		}
		s.Hub.Broadcast(newEvent(EventSet, report))
		messages = append(messages, fmt.Sprintf("Set quantities to %d (Debug/Test Only).", reset.TestQuantity))
	}

	if doSave {
		flag, err := reset.ParseFlag(c.PostForm("auto_reset_quantities"))
		if err != nil {
			s.renderSettings(c, http.StatusBadRequest, messages, "Invalid value for automatic reset.")
			return
		}
		changed, err := reset.SetAutoReset(ctx, s.Flags, flag)
		if err != nil {
			s.Logger.Error("saving options failed", zap.Error(err))
			s.renderSettings(c, http.StatusInternalServerError, messages, "Saving options failed.")
			return
		}
		if changed {
			s.Logger.Info("auto reset option changed", zap.String("value", string(flag)))
		}
		messages = append(messages, "Options saved.")
	}

	s.renderSettings(c, http.StatusOK, messages, "")
}

func (s *Server) renderSettings(c *gin.Context, status int, messages []string, errMsg string) {
	st, err := reset.ReadStatus(c.Request.Context(), s.Flags)
	if err != nil {
		s.Logger.Error("reading options failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "reading options failed")
		return
	}

	token, err := s.Nonces.Issue(nonceAction)
	if err != nil {
		s.Logger.Error("issuing nonce failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "issuing token failed")
		return
	}

	c.HTML(status, "settings.gohtml", settingsView{
		AutoReset: string(st.AutoReset),
		Status:    st,
		Nonce:     token,
		Messages:  messages,
		Error:     errMsg,
	})
}
