package device

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// DeviceSuite tests user-agent parsing into client descriptors.
type DeviceSuite struct {
	suite.Suite
}

func TestDeviceSuite(t *testing.T) {
	suite.Run(t, new(DeviceSuite))
}

func (s *DeviceSuite) TestUserAgentParsing() {
	s.Run("empty user agent returns unknown device", func() {
		s.Equal("Unknown Device", ParseUserAgent(""))
	})

	s.Run("chrome on desktop includes browser and OS", func() {
		ua := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		result := ParseUserAgent(ua)
		s.Contains(result, "Chrome")
		s.Contains(result, "on")
		s.NotContains(result, "  ")
	})

	s.Run("firefox on linux includes browser and OS", func() {
		ua := "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
		result := ParseUserAgent(ua)
		s.Contains(result, "Firefox")
		s.Contains(result, "on")
	})

	s.Run("unknown user agent returns formatted string", func() {
		result := ParseUserAgent("Unknown/1.0")
		s.Contains(result, "on")
		s.NotEmpty(result)
	})
}
