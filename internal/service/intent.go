package service

import (
	"context"
	"strings"

	"github.com/AndreCurotec/funeral-home-agent/internal/model"
)

// Intent is the routing category assigned to one utterance
type Intent string

const (
	IntentNone       Intent = "none"
	IntentHelp       Intent = "help"
	IntentGreeting   Intent = "greeting"
	IntentShowMore   Intent = "show_more"
	IntentAdjustment Intent = "adjustment"
)

var helpKeywords = []string{"help", "what can you do", "how does this work", "what do you need", "confused"}

var greetingKeywords = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}

var moreOptionsKeywords = []string{"more options", "show more", "see more", "other options", "more choices", "additional", "what else"}

// Classification is the outcome of routing one utterance
type Classification struct {
	Intent     Intent
	Adjustment *model.AdjustmentIntent
}

// intentMatcher inspects one utterance and claims it or passes. Matchers run in
// priority order and the first claim wins.
type intentMatcher func(ctx context.Context, message, messageLower string, current *model.UserRequirements) *Classification

// IntentClassifier decides whether an utterance needs special handling before
// any extraction happens. Show-more suppresses extraction entirely so that
// field-like words inside "show me more options nearby" cannot corrupt
// collected values.
type IntentClassifier struct {
	matchers []intentMatcher
}

// NewIntentClassifier creates a new intent classifier
func NewIntentClassifier(extractor *InformationExtractor) *IntentClassifier {
	c := &IntentClassifier{}
	c.matchers = []intentMatcher{
		c.matchHelp,
		c.matchGreeting,
		c.matchShowMore,
		matchAdjustment(extractor),
	}
	return c
}

// Classify routes an utterance to its handling category. The first matcher to
// claim the utterance decides; when none does it falls through to extraction.
func (c *IntentClassifier) Classify(ctx context.Context, message string, current *model.UserRequirements) Classification {
	messageLower := strings.ToLower(message)

	for _, match := range c.matchers {
		if cls := match(ctx, message, messageLower, current); cls != nil {
			return *cls
		}
	}

	return Classification{Intent: IntentNone}
}

func (c *IntentClassifier) matchHelp(_ context.Context, _, messageLower string, _ *model.UserRequirements) *Classification {
	if matchAnyKeyword(messageLower, helpKeywords) {
		return &Classification{Intent: IntentHelp}
	}
	return nil
}

// matchGreeting only claims before anything has been collected, otherwise a
// polite "hi, make it Miami instead" would re-trigger the welcome
func (c *IntentClassifier) matchGreeting(_ context.Context, _, messageLower string, current *model.UserRequirements) *Classification {
	if matchAnyKeyword(messageLower, greetingKeywords) && !current.HasAny() {
		return &Classification{Intent: IntentGreeting}
	}
	return nil
}

func (c *IntentClassifier) matchShowMore(_ context.Context, _, messageLower string, _ *model.UserRequirements) *Classification {
	if matchAnyKeyword(messageLower, moreOptionsKeywords) {
		return &Classification{Intent: IntentShowMore}
	}
	return nil
}

// matchAdjustment is only consulted once at least one field is set; a "none"
// verdict from the detector lets the utterance fall through to extraction
func matchAdjustment(extractor *InformationExtractor) intentMatcher {
	return func(ctx context.Context, message, _ string, current *model.UserRequirements) *Classification {
		if !current.HasAny() {
			return nil
		}
		adjustment := extractor.DetectAdjustmentIntent(ctx, message, current)
		if adjustment.Type == model.AdjustmentNone {
			return nil
		}
		return &Classification{Intent: IntentAdjustment, Adjustment: adjustment}
	}
}
