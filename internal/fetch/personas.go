package fetch

// Persona is a distinct HTTP request header profile used to vary fetch
// attempts. Personas are tried in order; sites that reject one header set
// frequently accept another.
type Persona struct {
	Name    string
	Headers map[string]string
}

// Persona names, in attempt order.
const (
	PersonaDesktop = "desktop-browser"
	PersonaMobile  = "mobile-browser"
	PersonaBot     = "bot-friendly"
)

// botUserAgent identifies the service honestly for sites that prefer
// declared crawlers.
const botUserAgent = "Mozilla/5.0 (compatible; DocifyBot/1.0; +https://docify.app)"

// Personas returns the ordered list of request personas.
func Personas() []Persona {
	return []Persona{
		{
			Name: PersonaDesktop,
			Headers: map[string]string{
				"User-Agent":                "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
				"Accept-Language":           "en-US,en;q=0.9",
				"DNT":                       "1",
				"Connection":                "keep-alive",
				"Upgrade-Insecure-Requests": "1",
				"Sec-Fetch-Dest":            "document",
				"Sec-Fetch-Mode":            "navigate",
				"Sec-Fetch-Site":            "none",
				"Cache-Control":             "max-age=0",
			},
		},
		{
			Name: PersonaMobile,
			Headers: map[string]string{
				"User-Agent":      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
				"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
				"Accept-Language": "en-US,en;q=0.9",
			},
		},
		{
			Name: PersonaBot,
			Headers: map[string]string{
				"User-Agent":      botUserAgent,
				"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
				"Accept-Language": "en-US,en;q=0.9",
			},
		},
	}
}
