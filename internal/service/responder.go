package service

import (
	"fmt"
	"strings"

	"github.com/AndreCurotec/funeral-home-agent/internal/model"
)

// ResponseGenerator renders the chat text for every conversation situation.
// It is purely presentational: state transitions belong to the manager.
type ResponseGenerator struct {
	locationExamples   []string
	suggestedLocations []string
}

// NewResponseGenerator creates a generator with the stock example locations
func NewResponseGenerator() *ResponseGenerator {
	return &ResponseGenerator{
		locationExamples: []string{
			"Austin, TX", "Miami, FL", "New York, NY", "Los Angeles, CA",
			"Chicago, IL", "Dallas, TX", "Phoenix, AZ", "Philadelphia, PA",
		},
		suggestedLocations: []string{
			"Houston, TX", "Dallas, TX", "San Antonio, TX",
			"Miami, FL", "Los Angeles, CA", "Chicago, IL",
			"Philadelphia, PA", "New York, NY",
		},
	}
}

// Welcome greets a brand-new user and lists what will be collected
func (g *ResponseGenerator) Welcome() string {
	return `Hello, I'm here to help you find the perfect funeral home for your needs.

To provide you with the best recommendations, I'll need to gather some information:

📍 **Your location** - So I can find nearby options
⚱️ **Type of service** - What kind of service you're looking for
⏰ **Timeframe** - When you need these services
💰 **Your preference** - Whether you prioritize cost or convenience

You can provide all this information at once, or we can go step by step. How would you like to get started?`
}

// Help explains the assistant's capabilities
func (g *ResponseGenerator) Help() string {
	return `I'm here to help you find funeral homes! I can assist you with:

✅ **Finding funeral homes** in your area
✅ **Comparing options** based on your preferences
✅ **Different service types** (cremation, burial, etc.)
✅ **Budget and location** considerations

Just tell me what you're looking for, like:
• "I need funeral homes in Austin, Texas"
• "Looking for affordable cremation services"
• "Need immediate funeral arrangements in Miami"

What can I help you with today?`
}

// CollectionPrompt asks for the first missing field in fixed order
func (g *ResponseGenerator) CollectionPrompt(req *model.UserRequirements) string {
	missing := req.MissingFields()
	if len(missing) == 0 {
		return "I need a bit more information. Could you please provide more details about your funeral home needs?"
	}

	switch missing[0] {
	case "location":
		return g.promptForLocation()
	case "service_type":
		return g.promptForServiceType(req)
	case "timeframe":
		return g.promptForTimeframe(req)
	case "preference":
		return g.promptForPreference(req)
	}

	return "I need a bit more information. Could you please provide more details about your funeral home needs?"
}

func (g *ResponseGenerator) promptForLocation() string {
	examples := strings.Join(g.locationExamples[:4], ", ")

	return fmt.Sprintf(`I'd be happy to help you find funeral homes! First, could you please tell me your location?

You can provide:
• City and state (e.g., %s)
• Just a city name (e.g., "Austin" or "Miami")
• Your zip code or neighborhood

Where are you located?`, examples)
}

func (g *ResponseGenerator) promptForServiceType(req *model.UserRequirements) string {
	return fmt.Sprintf(`Great! %s

Now, what type of service are you looking for?

🕊️ **Cremation Memorial** - Cremation with memorial service
⚰️ **Traditional Funeral** - Full funeral service with burial
🏺 **Direct Burial** - Simple burial without ceremony
🔥 **Direct Cremation** - Simple cremation without ceremony

Which option interests you, or would you like me to explain any of these in more detail?`, g.FormatCurrentInfo(req))
}

func (g *ResponseGenerator) promptForTimeframe(req *model.UserRequirements) string {
	return fmt.Sprintf(`Thank you! %s

When do you need these services?

⚡ **Immediately** - Right away or within days (urgent situation)
📅 **Within the next 4 weeks** - Soon but not urgent
🗓️ **Likely within 6 months** - Planning ahead for this year
🔮 **Planning for the future** - Just exploring options for future planning

What timeframe works for your situation?`, g.FormatCurrentInfo(req))
}

func (g *ResponseGenerator) promptForPreference(req *model.UserRequirements) string {
	return fmt.Sprintf(`Perfect! %s

Finally, what's most important to you when choosing a funeral home?

💰 **Cheapest options** - Focus on affordability and budget-friendly choices
📍 **Nearest locations** - Focus on convenience and proximity to you

Which would you prefer, or is there a balance of both you're looking for?`, g.FormatCurrentInfo(req))
}

// Completion confirms the collected criteria before searching
func (g *ResponseGenerator) Completion(req *model.UserRequirements) string {
	return fmt.Sprintf(`Perfect! I have all the information I need. Here's what I'm searching for:

%s

Let me find the best funeral homes that match your criteria...`, g.FormatCurrentInfo(req))
}

// ValidationIssues reports rejected values and asks the user to rephrase
func (g *ResponseGenerator) ValidationIssues(req *model.UserRequirements, issues []string) string {
	return fmt.Sprintf(`I had trouble understanding part of your request: %s

%s

Could you please clarify or rephrase your request? I'm here to help!`, strings.Join(issues, ". "), g.FormatCurrentInfo(req))
}

// ResultsClarify asks whether the shown options are satisfactory
func (g *ResponseGenerator) ResultsClarify() string {
	return `Are you satisfied with these funeral home options? You can:

• **"Yes, these look good"** - If you're happy with the options
• **"Show me more options"** - To see additional funeral homes with the same criteria
• **"I want different options"** - To change your location, service type, or preferences

What would you prefer?`
}

// AdjustmentPrompt is shown when the user asked for different options
func (g *ResponseGenerator) AdjustmentPrompt() string {
	return `I understand you'd like to see different options. What would you like to change?

You can modify any of these:
• **Location** - Different city or area
• **Service type** - Different type of service
• **Timeframe** - Different timeline
• **Preference** - Switch between cheapest vs nearest

Or you can give me completely new requirements. What would you like to adjust?`
}

// AdjustmentResponse re-states current criteria and offers what can change
func (g *ResponseGenerator) AdjustmentResponse(req *model.UserRequirements) string {
	return fmt.Sprintf(`I'd be happy to help you find different options! %s

What would you like to change?
• **Location** - Different city or area
• **Service type** - Different type of service
• **Timeframe** - Different timeline
• **Preference** - Switch between cheapest vs nearest

Just let me know what you'd like to adjust, and I'll find new recommendations for you.`, g.FormatCurrentInfo(req))
}

// MoreOptions acknowledges a show-more request, with a soft cap once the user
// has already seen plenty
func (g *ResponseGenerator) MoreOptions(req *model.UserRequirements, shownCount int) string {
	if shownCount >= 9 {
		return fmt.Sprintf(`I've already shown you %d funeral homes matching your criteria. %s

I recommend either:
• **"These look good"** - If any of the previous options work for you
• **"I want different options"** - To change your location, service type, or preferences for fresh results

What would you prefer?`, shownCount, g.FormatCurrentInfo(req))
	}

	return fmt.Sprintf(`Perfect! Let me find more funeral homes that match your criteria. %s

I'll show you additional options that I haven't shown you yet...`, g.FormatCurrentInfo(req))
}

// CompleteReset confirms a full restart and asks for the first field again
func (g *ResponseGenerator) CompleteReset() string {
	return `I understand you'd like to start completely fresh! Let me help you find new funeral homes.

I'll need to collect your requirements again:
• **📍 Location** - Which city or area?
• **⚱️ Service Type** - What type of service do you need?
• **⏰ Timeframe** - When do you need this?
• **💰 Preference** - Do you prefer the cheapest or nearest options?

What's your location?`
}

// PartialAdjustmentComplete acknowledges applied changes when criteria are full
func (g *ResponseGenerator) PartialAdjustmentComplete(changes []string, req *model.UserRequirements) string {
	return fmt.Sprintf(`Perfect! I've updated your preferences:

%s

%s

Let me find new funeral homes with your updated criteria. I'll show you 3 options that match your new preferences...`, formatChangeList(changes), g.FormatCurrentInfo(req))
}

// PartialAdjustmentIncomplete acknowledges changes and asks for what is missing
func (g *ResponseGenerator) PartialAdjustmentIncomplete(changes []string, req *model.UserRequirements) string {
	missingText := strings.ReplaceAll(strings.Join(req.MissingFields(), ", "), "_", " ")

	return fmt.Sprintf(`Great! I've updated:

%s

%s

I still need: **%s**

Could you provide the missing information so I can find the perfect funeral homes for you?`, formatChangeList(changes), g.FormatCurrentInfo(req), missingText)
}

// PartialAdjustmentClarify asks which field the user actually wants to change
func (g *ResponseGenerator) PartialAdjustmentClarify(req *model.UserRequirements) string {
	return fmt.Sprintf(`I'd like to help you adjust your preferences, but I'm not sure exactly what you'd like to change.

%s

Could you be more specific? For example:
• "Change location to Miami"
• "I want traditional funeral instead"
• "Switch to nearest options"
• "I need it immediately"

What would you like to adjust?`, g.FormatCurrentInfo(req))
}

// Farewell closes a satisfied conversation
func (g *ResponseGenerator) Farewell() string {
	return "Wonderful! I'm glad I could help you find suitable funeral home options. If you need any more assistance in the future, feel free to ask!"
}

// CompletedState answers messages arriving after the conversation finished
func (g *ResponseGenerator) CompletedState() string {
	return "Thank you for using our funeral home finder service!"
}

// NoResults explains an empty search and suggests alternatives
func (g *ResponseGenerator) NoResults(req *model.UserRequirements) string {
	suggestions := strings.Join(g.suggestedLocations[:4], ", ")

	return fmt.Sprintf(`I'm sorry, but I couldn't find any funeral homes matching your criteria:

%s

This might be because:
• **Limited coverage** - Our database may not have funeral homes in this specific area
• **Service availability** - The requested service type might not be available locally

**Suggestions:**
• Try a **nearby major city** like %s
• **Modify your location** to include surrounding areas
• **Change your service type** to see if other options are available

Would you like to try a different location or modify your search criteria?`, g.FormatCurrentInfo(req), suggestions)
}

// Error renders a generic apology for the given failure kind
func (g *ResponseGenerator) Error(kind string) string {
	switch kind {
	case "extraction":
		return "I had trouble understanding your message. Could you please rephrase your request?"
	case "validation":
		return "Some of the information provided doesn't seem to be in the right format. Could you please clarify?"
	case "timeout":
		return "It seems like our conversation has been inactive for a while. Feel free to start fresh with your funeral home needs."
	default:
		return "I apologize, but I encountered an issue processing your request. Could you please try again?"
	}
}

// FormatCurrentInfo renders the fields collected so far, empty when none are set
func (g *ResponseGenerator) FormatCurrentInfo(req *model.UserRequirements) string {
	var parts []string

	if req.Location != nil {
		parts = append(parts, fmt.Sprintf("📍 **Location:** %s", *req.Location))
	}
	if req.ServiceType != nil {
		parts = append(parts, fmt.Sprintf("⚱️ **Service:** %s", model.ServiceTypeDisplay[*req.ServiceType]))
	}
	if req.Timeframe != nil {
		parts = append(parts, fmt.Sprintf("⏰ **Timeframe:** %s", model.TimeframeDisplay[*req.Timeframe]))
	}
	if req.Preference != nil {
		parts = append(parts, fmt.Sprintf("💰 **Preference:** %s", model.PreferenceDisplay[*req.Preference]))
	}

	if len(parts) == 0 {
		return ""
	}
	return "Here's what I have so far:\n\n" + strings.Join(parts, "\n")
}

func formatChangeList(changes []string) string {
	lines := make([]string, 0, len(changes))
	for _, change := range changes {
		lines = append(lines, "• "+change)
	}
	return strings.Join(lines, "\n")
}
