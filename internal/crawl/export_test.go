package crawl

// ShouldFollow exposes the link filter for tests.
func (c *Crawler) ShouldFollow(link, host string) bool {
	return c.shouldFollow(link, host)
}
