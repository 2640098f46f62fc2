package playground

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kitchenbot/internal/database"
	"kitchenbot/internal/evaluation"
)

// ScenarioInfo represents information about an available scenario
type ScenarioInfo struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Difficulty    int      `json:"difficulty"`
	Menu          []string `json:"menu"`
	Bots          int      `json:"bots"`
	DurationSecs  float64  `json:"duration_seconds"`
	OrderLifetime float64  `json:"order_lifetime_seconds,omitempty"`
}

// EvaluationRequest asks for a scenario run. Wait makes the request block
// until the run is done and return the result.
type EvaluationRequest struct {
	Scenario string `json:"scenario" binding:"required"`
	Seed     int64  `json:"seed"`
	Wait     bool   `json:"wait"`
}

func (s *PlaygroundServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleListRecipes returns the recipe catalog
func (s *PlaygroundServer) handleListRecipes(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Recipes())
}

// handleListScenarios returns a list of available scenarios
func (s *PlaygroundServer) handleListScenarios(c *gin.Context) {
	if s.evaluator == nil {
		c.JSON(http.StatusOK, []ScenarioInfo{})
		return
	}

	scenarios := s.evaluator.GetScenarios()
	infos := make([]ScenarioInfo, 0, len(scenarios))
	for _, sc := range scenarios {
		info := ScenarioInfo{
			ID:            sc.ID,
			Name:          sc.Name,
			Description:   sc.Description,
			Difficulty:    sc.Difficulty,
			Bots:          sc.Bots,
			DurationSecs:  sc.Duration.Seconds(),
			OrderLifetime: sc.OrderLifetime.Seconds(),
		}
		for _, d := range sc.Menu {
			info.Menu = append(info.Menu, string(d))
		}
		infos = append(infos, info)
	}
	c.JSON(http.StatusOK, infos)
}

// handleMetrics returns current evaluation metrics
func (s *PlaygroundServer) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.GetMetrics())
}

// handleState returns the current frame of the live kitchen
func (s *PlaygroundServer) handleState(c *gin.Context) {
	if s.session == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no live session"})
		return
	}
	c.JSON(http.StatusOK, s.session.Frame())
}

// handleEvaluate runs a scenario, in the background unless the request
// asks to wait
func (s *PlaygroundServer) handleEvaluate(c *gin.Context) {
	if s.evaluator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "evaluation is disabled"})
		return
	}

	var req EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !s.evaluator.HasScenario(req.Scenario) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scenario: " + req.Scenario})
		return
	}

	if req.Wait {
		result, err := s.evaluate(req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	s.running.Add(1)
	go func() {
		defer s.running.Done()
		if _, err := s.evaluate(req); err != nil {
			log.Printf("Evaluation of %s failed: %v", req.Scenario, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "evaluation_started", "scenario": req.Scenario})
}

// evaluate runs one scenario and records the result everywhere it is kept
func (s *PlaygroundServer) evaluate(req EvaluationRequest) (*evaluation.EvaluationResult, error) {
	result, err := s.evaluator.Run(s.ctx, req.Scenario, req.Seed)
	if err != nil {
		return nil, err
	}

	s.monitor.RecordEvaluationResult(result.Scenario, result.RunID, result.Metrics)
	if s.store != nil {
		if err := s.store.SaveRun(result.Record()); err != nil {
			log.Printf("Failed to store run %s: %v", result.RunID, err)
		}
	}
	if s.session != nil {
		s.session.Broadcast(gin.H{
			"type":     "evaluation",
			"run_id":   result.RunID,
			"scenario": result.Scenario,
			"score":    result.Score,
			"metrics":  result.Metrics,
		})
	}
	return result, nil
}

// handleListRuns returns stored runs, newest first
func (s *PlaygroundServer) handleListRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run log is disabled"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	runs, err := s.store.Runs(c.Query("scenario"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// handleGetRun returns one stored run with its events and actions
func (s *PlaygroundServer) handleGetRun(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run log is disabled"})
		return
	}

	run, err := s.store.Run(c.Param("id"))
	if errors.Is(err, database.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}
