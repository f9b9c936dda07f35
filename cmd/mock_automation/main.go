package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"dyd/internal/model"
	"dyd/internal/usecase"
	"dyd/pkg/automation"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

// A stand-in for the automation platform. It accepts forwards on
// /scenario/:kind and, after a short delay, posts a model-style answer back
// to the callback URL, exercising the same parsing paths as real scenarios.

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// mockScore rates a CV by how much of the wizard is filled in.
func mockScore(req automation.ForwardRequest, cv model.CV) int {
	steps := usecase.ValidateWizard(cv)
	valid := 0
	for _, s := range steps {
		if s.Valid {
			valid++
		}
	}
	score := 40 + valid*10
	if req.JobDescription != "" && strings.Contains(strings.ToLower(req.JobDescription), "go") {
		score -= 5
	}
	return score
}

func mockResult(req automation.ForwardRequest) map[string]interface{} {
	var cv model.CV
	_ = json.Unmarshal(req.CV, &cv)
	switch req.Kind {
	case automation.Generate:
		return map[string]interface{}{
			"headline": cv.Personal.Name + " | Software Engineer",
			"summary":  "Engineer with a track record of shipping reliable backend services and mentoring teams.",
		}
	case automation.Optimize:
		return map[string]interface{}{
			"score":            mockScore(req, cv),
			"missing_keywords": []string{"kubernetes", "observability"},
			"summary":          "Backend engineer focused on " + firstWords(req.JobDescription, 6) + ".",
		}
	}
	return map[string]interface{}{
		"score":       mockScore(req, cv),
		"strengths":   []string{"Clear structure"},
		"weaknesses":  []string{"Few quantified results"},
		"suggestions": []string{"Add numbers to each bullet"},
	}
}

func firstWords(s string, n int) string {
	f := strings.Fields(s)
	if len(f) > n {
		f = f[:n]
	}
	return strings.Join(f, " ")
}

func main() {
	_ = godotenv.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	addr := getEnv("MOCK_ADDR", ":8000")
	secret := getEnv("AUTOMATION_SECRET", "")
	delay, err := time.ParseDuration(getEnv("MOCK_DELAY", "3s"))
	if err != nil {
		log.Error("invalid MOCK_DELAY", "error", err)
		os.Exit(2)
	}
	client := resty.New().SetTimeout(10 * time.Second).SetRetryCount(2)

	app := fiber.New()
	app.Post("/scenario/:kind", func(c *fiber.Ctx) error {
		var req automation.ForwardRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
		}
		if string(req.Kind) != c.Params("kind") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "kind does not match scenario"})
		}
		log.Info("forward received", "job_id", req.JobID, "kind", req.Kind)

		go func(req automation.ForwardRequest) {
			time.Sleep(delay)
			b, _ := json.Marshal(mockResult(req))
			// Real models wrap their JSON in prose and a fence.
			output := fmt.Sprintf("Sure! Here is the result:\n```json\n%s\n```", b)
			resp, err := client.R().
				SetHeader("X-Automation-Secret", secret).
				SetBody(map[string]interface{}{"job_id": req.JobID, "status": "completed", "result": output}).
				Post(req.CallbackURL)
			if err != nil {
				log.Error("callback failed", "job_id", req.JobID, "error", err)
				return
			}
			log.Info("callback sent", "job_id", req.JobID, "status", resp.StatusCode())
		}(req)

		return c.JSON(fiber.Map{"accepted": true})
	})

	log.Info("mock automation listening", "addr", addr)
	if err := app.Listen(addr); err != nil {
		log.Error("mock automation failed", "error", err)
		os.Exit(1)
	}
}
