// Package tools resolves tool calls from the drafting agent into knowledge
// lookups or web searches. Execution never fails from the caller's point of
// view: every error degrades to readable text so the model can decide how
// to respond.
package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/banyanstays/condobot/internal/llm"
	"github.com/banyanstays/condobot/internal/search"
	"github.com/banyanstays/condobot/pkg/metrics"
)

// Tool arguments come back from the model and are untrusted. Slugs are
// restricted to a safe character class before they touch any path.
var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

const snippetLimit = 300

// KnowledgeBase is the subset of the knowledge library the executor needs.
type KnowledgeBase interface {
	PropertyDoc(slug, kind string) (string, error)
	AreaDoc(area, kind string) (string, error)
	PolicyDoc() (string, error)
}

// AreaResolver maps a property slug to its geographic area.
type AreaResolver func(slug string) string

// Executor resolves named tool calls to text results.
type Executor struct {
	kb       KnowledgeBase
	area     AreaResolver
	searcher search.Provider
}

// NewExecutor creates an executor. searcher may be nil when web search is
// not configured.
func NewExecutor(kb KnowledgeBase, area AreaResolver, searcher search.Provider) *Executor {
	return &Executor{kb: kb, area: area, searcher: searcher}
}

const slugParamDesc = `The property identifier, e.g. "banyan-tree-300"`

// Definitions returns the tool set offered to the drafting agent. The
// web_search tool is always advertised; when the provider is not configured
// it answers with a deterministic message instead of silently no-opping.
func (e *Executor) Definitions() []llm.ToolDefinition {
	slugSchema := llm.StringSchema(map[string]string{
		"property_slug": slugParamDesc,
	}, "property_slug")

	return []llm.ToolDefinition{
		{
			Name:        "lookup_property_info",
			Description: "Look up detailed information about a vacation rental property, including amenities, check-in/out times, parking, Wi-Fi, beach equipment, and more.",
			Schema:      slugSchema,
		},
		{
			Name:        "lookup_technology",
			Description: "Look up technology information for the property (Wi-Fi, smart TVs, etc.).",
			Schema:      slugSchema,
		},
		{
			Name:        "lookup_policy",
			Description: "Look up house rules and policies including cancellation, pets, noise, checkout, smoking, and damages.",
			Schema:      slugSchema,
		},
		{
			Name:        "lookup_restaurants",
			Description: "Look up restaurant recommendations near the property.",
			Schema:      slugSchema,
		},
		{
			Name:        "lookup_activities",
			Description: "Look up recommended activities and things to do near the property.",
			Schema:      slugSchema,
		},
		{
			Name:        "lookup_amenities",
			Description: "Look up shared amenities near the property (pools, beach access, fitness).",
			Schema:      slugSchema,
		},
		{
			Name:        "web_search",
			Description: "Search the web for topics not covered by the knowledge base, e.g. tour operators, airport transport, weather, or local events. Include geographic context in the query.",
			Schema: llm.StringSchema(map[string]string{
				"query": "The search query",
			}, "query"),
		},
	}
}

// Execute runs one tool call and returns its text result.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]string) string {
	metrics.ToolCallsTotal.WithLabelValues(name).Inc()

	switch name {
	case "lookup_property_info":
		return e.propertyDoc(args, "")
	case "lookup_technology":
		return e.propertyDoc(args, "technology")
	case "lookup_policy":
		doc, err := e.kb.PolicyDoc()
		if err != nil {
			return "Policy information is not yet available."
		}
		return doc
	case "lookup_restaurants":
		return e.areaDoc(args, "restaurants")
	case "lookup_activities":
		return e.areaDoc(args, "activities")
	case "lookup_amenities":
		return e.areaDoc(args, "amenities")
	case "web_search":
		return e.webSearch(ctx, args["query"])
	default:
		return fmt.Sprintf("Unknown tool: %s", name)
	}
}

func (e *Executor) slug(args map[string]string) (string, bool) {
	slug := args["property_slug"]
	return slug, slugPattern.MatchString(slug)
}

func (e *Executor) propertyDoc(args map[string]string, kind string) string {
	slug, ok := e.slug(args)
	if !ok {
		return fmt.Sprintf("Invalid property identifier %q.", slug)
	}

	doc, err := e.kb.PropertyDoc(slug, kind)
	if err != nil {
		if kind == "" {
			return fmt.Sprintf("No property information found for %q.", slug)
		}
		return fmt.Sprintf("No %s guide found for %q.", kind, slug)
	}
	return doc
}

func (e *Executor) areaDoc(args map[string]string, kind string) string {
	slug, ok := e.slug(args)
	if !ok {
		return fmt.Sprintf("Invalid property identifier %q.", slug)
	}

	area := e.area(slug)
	doc, err := e.kb.AreaDoc(area, kind)
	if err != nil {
		return fmt.Sprintf("No %s guide found for the %s area.", kind, area)
	}
	return doc
}

func (e *Executor) webSearch(ctx context.Context, query string) string {
	if e.searcher == nil {
		return "Web search is not configured. Fall back to general knowledge and offer to find out more for the guest."
	}
	if strings.TrimSpace(query) == "" {
		return "Web search needs a non-empty query."
	}

	result, err := e.searcher.Search(ctx, query)
	if err != nil {
		return fmt.Sprintf("Web search failed: %v", err)
	}

	var b strings.Builder
	if result.Answer != "" {
		b.WriteString("Answer: ")
		b.WriteString(result.Answer)
		b.WriteString("\n\n")
	}

	if len(result.Snippets) == 0 && result.Answer == "" {
		return "Web search returned no results."
	}

	for i, s := range result.Snippets {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "[%s] %s\n%s\n\n", s.Title, s.URL, truncate(s.Content, snippetLimit))
	}

	return strings.TrimSpace(b.String())
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
