package generator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"github.com/jittakal/kafanalytics/internal/config"
	"github.com/jittakal/kafanalytics/internal/events"
	"github.com/jittakal/kafanalytics/pkg/event"
	"go.uber.org/zap"
)

// Generator generates fake analytics events
type Generator struct {
	config *config.GeneratorConfig
	faker  faker.Faker
	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator creates a new event generator
func NewGenerator(config config.GeneratorConfig, logger *zap.Logger) *Generator {
	if len(config.Platforms) == 0 {
		config.Platforms = []string{"Web"}
	}
	return &Generator{
		config: &config,
		faker:  faker.New(),
		logger: logger,
		now:    time.Now,
	}
}

// Generate builds an event of a randomly chosen type. Purchases are picked
// with the configured probability when enabled.
func (g *Generator) Generate() *event.Event {
	return g.GenerateEvent(g.nextEventType())
}

// GenerateEvent builds an analytics event of the given type. Property names
// are deliberately given in mixed spellings; the event normalizes them.
func (g *Generator) GenerateEvent(eventType string) *event.Event {
	now := g.now()
	platform := g.faker.RandomStringElement(g.config.Platforms)

	e := event.New(map[string]interface{}{
		"eventType":   eventType,
		"time":        now.UnixMilli(),
		"insertId":    uuid.New().String(),
		"device_id":   g.faker.UUID().V4(),
		"sessionId":   now.Add(-time.Duration(g.faker.IntBetween(0, 1800)) * time.Second).UnixMilli(),
		"platform":    platform,
		"os_name":     osName(platform),
		"osVersion":   g.version(),
		"app_version": g.version(),
		"city":        g.faker.Address().City(),
		"country":     g.faker.Address().Country(),
		"ip":          g.faker.Internet().Ipv4(),
		"language":    g.faker.RandomStringElement([]string{"English", "Dutch", "German", "Spanish"}),
		"Page URL":    g.faker.Internet().URL(),
		"referrer":    g.faker.RandomStringElement([]string{"direct", "search", "social", "email"}),
	})

	if !g.chance(g.config.AnonymousRatio) {
		e.Set("userId", g.generateUserID())
		e.SetUserProperties(map[string]interface{}{
			"name":  g.faker.Person().Name(),
			"email": g.faker.Internet().Email(),
		})
	}

	switch eventType {
	case events.EventTypePurchase:
		g.addPurchase(e)
	case events.EventTypeButtonClick:
		e.Set("button id", "btn-"+g.faker.Lorem().Word())
	case events.EventTypeSignUp:
		e.SetUserProperties(map[string]interface{}{
			"signup_date": now.Format("2006-01-02"),
			"plan":        g.faker.RandomStringElement([]string{"free", "pro", "team"}),
		})
	}

	g.logger.Debug("Generated analytics event",
		zap.String("eventType", eventType),
		zap.Int("fields", e.Len()),
	)

	return e
}

func (g *Generator) addPurchase(e *event.Event) {
	quantity := g.faker.IntBetween(1, 5)
	price := g.faker.Float64(2, 1, 200)

	// price is passed as text to exercise float coercion
	e.Set("product_id", "P"+g.faker.UUID().V4()[0:8]).
		Set("price", fmt.Sprintf("%.2f", price)).
		Set("quantity", quantity).
		Set("revenue", price*float64(quantity)).
		Set("revenue_type", g.faker.RandomStringElement([]string{"purchase", "subscription", "refund"})).
		Set("Payment Method", g.faker.RandomStringElement([]string{"card", "paypal", "voucher"}))
}

func (g *Generator) nextEventType() string {
	if g.chance(g.config.PurchaseProbability) {
		return events.EventTypePurchase
	}

	candidates := make([]string, 0, len(g.config.EventTypes))
	for _, t := range g.config.EventTypes {
		if t != events.EventTypePurchase {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return events.EventTypePurchase
	}
	return g.faker.RandomStringElement(candidates)
}

// chance reports true with the given probability (0.0 to 1.0)
func (g *Generator) chance(probability float64) bool {
	if probability <= 0 {
		return false
	}
	return g.faker.IntBetween(1, 100) <= int(probability*100)
}

func (g *Generator) generateUserID() string {
	return "U" + g.faker.UUID().V4()[0:8]
}

func (g *Generator) version() string {
	return fmt.Sprintf("%d.%d.%d", g.faker.IntBetween(1, 9), g.faker.IntBetween(0, 20), g.faker.IntBetween(0, 50))
}

func osName(platform string) string {
	switch platform {
	case "iOS":
		return "ios"
	case "Android":
		return "android"
	default:
		return "Chrome"
	}
}
