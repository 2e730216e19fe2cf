package enrich

import (
	"fmt"
	"strconv"

	"github.com/ua-parser/uap-go/uaparser"
)

// Agent is a decomposed user-agent string. Every field is optional:
// the decomposer fills what it recognizes and leaves the rest nil.
// Version components beyond what the UA advertises stay nil rather
// than zero.
type Agent struct {
	Browser           *string
	BrowserMajor      *uint16
	BrowserMinor      *uint16
	BrowserPatch      *uint16
	BrowserPatchMinor *uint16

	OS           *string
	OSMajor      *uint16
	OSMinor      *uint16
	OSPatch      *uint16
	OSPatchMinor *uint16

	Device *string
	Brand  *string
	Model  *string
}

// UAParser decomposes user agents with the uap-core regex database.
type UAParser struct {
	parser *uaparser.Parser
}

// NewUAParser builds a decomposer from the library's embedded uap-core
// definitions.
func NewUAParser() *UAParser {
	return &UAParser{parser: uaparser.NewFromSaved()}
}

// NewUAParserFromFile builds a decomposer from an external regexes.yaml,
// for running against a newer uap-core snapshot than the embedded one.
func NewUAParserFromFile(path string) (*UAParser, error) {
	p, err := uaparser.New(path)
	if err != nil {
		return nil, fmt.Errorf("loading UA regexes from %s: %w", path, err)
	}
	return &UAParser{parser: p}, nil
}

// Decompose extracts browser, OS and device data from a raw user-agent
// string. The uap engine reports unmatched components as the family
// "Other"; those are mapped to absent so unknown agents do not show up
// as a fake "Other" browser downstream.
func (u *UAParser) Decompose(userAgent string) Agent {
	client := u.parser.Parse(userAgent)

	var agent Agent
	if fam := family(client.UserAgent.Family); fam != nil {
		agent.Browser = fam
		agent.BrowserMajor = versionPart(client.UserAgent.Major)
		agent.BrowserMinor = versionPart(client.UserAgent.Minor)
		agent.BrowserPatch = versionPart(client.UserAgent.Patch)
		// uap-core carries no patch_minor for browsers; the column
		// exists for schema parity with the OS version and stays nil.
	}

	if fam := family(client.Os.Family); fam != nil {
		agent.OS = fam
		agent.OSMajor = versionPart(client.Os.Major)
		agent.OSMinor = versionPart(client.Os.Minor)
		agent.OSPatch = versionPart(client.Os.Patch)
		agent.OSPatchMinor = versionPart(client.Os.PatchMinor)
	}

	if fam := family(client.Device.Family); fam != nil {
		agent.Device = fam
		if client.Device.Brand != "" {
			brand := client.Device.Brand
			agent.Brand = &brand
		}
		if client.Device.Model != "" {
			model := client.Device.Model
			agent.Model = &model
		}
	}

	return agent
}

func family(name string) *string {
	if name == "" || name == "Other" {
		return nil
	}
	return &name
}

// versionPart parses one dotted-version component. Non-numeric parts
// (e.g. "beta1") and empty parts are absent.
func versionPart(s string) *uint16 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return nil
	}
	part := uint16(v)
	return &part
}
