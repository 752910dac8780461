// Package description contains objects that describe the media carried by
// an aggregated RTSP source, built on top of github.com/pion/sdp/v3.
package description

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	psdp "github.com/pion/sdp/v3"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/headers"
)

func getAttribute(attributes []psdp.Attribute, key string) string {
	for _, attr := range attributes {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}

func isBackChannel(attributes []psdp.Attribute) bool {
	for _, attr := range attributes {
		if attr.Key == "sendonly" {
			return true
		}
	}
	return false
}

func sortedKeys(fmtp map[string]string) []string {
	keys := make([]string, 0, len(fmtp))
	for key := range fmtp {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func isAlphaNumeric(v string) bool {
	for _, r := range v {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// MediaType is the type of a media stream.
type MediaType string

// media types.
const (
	MediaTypeVideo       MediaType = "video"
	MediaTypeAudio       MediaType = "audio"
	MediaTypeApplication MediaType = "application"
)

// Format is a single RTP payload format announced by a media, carried
// opaquely: the control plane never decodes the underlying codec, it only
// needs the payload type (for SETUP/RTP-Info bookkeeping) and the raw
// rtpmap/fmtp strings (to reproduce the SDP body verbatim on DESCRIBE).
type Format struct {
	PayloadType uint8
	RTPMap      string
	FMTP        map[string]string
}

// Media is a media stream announced by a source, with one or more formats.
type Media struct {
	// Media type.
	Type MediaType

	// Media ID (optional).
	ID string

	// Whether this media is a back channel.
	IsBackChannel bool

	// RTP Profile.
	Profile headers.TransportProfile

	// raw key-mgmt attribute value, passed through unmodified.
	// Secure transport (SRTP/MIKEY) is not interpreted by this server.
	KeyMgmt string

	// Control attribute.
	Control string

	// Formats contained in the media.
	Formats []Format

	// RTCPDisabled is set when "b=RR:0" and "b=RS:0" jointly appear in the
	// media description, instructing the control plane not to negotiate
	// or emit RTCP for this track.
	RTCPDisabled bool
}

// Unmarshal decodes the media from the SDP format.
func (m *Media) Unmarshal(md *psdp.MediaDescription) error {
	m.Type = MediaType(md.MediaName.Media)

	m.ID = getAttribute(md.Attributes, "mid")
	if m.ID != "" && !isAlphaNumeric(m.ID) {
		return fmt.Errorf("invalid mid: %v", m.ID)
	}

	m.IsBackChannel = isBackChannel(md.Attributes)

	m.Profile = headers.TransportProfileAVP
	for _, proto := range md.MediaName.Protos {
		if proto == "SAVP" {
			m.Profile = headers.TransportProfileSAVP
		}
	}

	m.KeyMgmt = getAttribute(md.Attributes, "key-mgmt")
	m.Control = getAttribute(md.Attributes, "control")

	var rr, rs string
	var hasRR, hasRS bool
	for _, bw := range md.Bandwidth {
		switch bw.Type {
		case "RR":
			rr, hasRR = strconv.FormatUint(bw.Bandwidth, 10), true
		case "RS":
			rs, hasRS = strconv.FormatUint(bw.Bandwidth, 10), true
		}
	}
	m.RTCPDisabled = hasRR && hasRS && rr == "0" && rs == "0"

	rtpmaps := make(map[string]string)
	fmtps := make(map[string]map[string]string)

	for _, attr := range md.Attributes {
		switch attr.Key {
		case "rtpmap":
			parts := strings.SplitN(attr.Value, " ", 2)
			if len(parts) == 2 {
				rtpmaps[parts[0]] = parts[1]
			}

		case "fmtp":
			parts := strings.SplitN(attr.Value, " ", 2)
			if len(parts) == 2 {
				fmtps[parts[0]] = parseFMTP(parts[1])
			}
		}
	}

	m.Formats = nil

	for _, payloadTypeStr := range md.MediaName.Formats {
		pt, err := strconv.ParseUint(payloadTypeStr, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid payload type: %v", payloadTypeStr)
		}

		m.Formats = append(m.Formats, Format{
			PayloadType: uint8(pt),
			RTPMap:      rtpmaps[payloadTypeStr],
			FMTP:        fmtps[payloadTypeStr],
		})
	}

	if m.Formats == nil {
		return fmt.Errorf("no formats found")
	}

	return nil
}

func parseFMTP(s string) map[string]string {
	ret := make(map[string]string)
	for _, kv := range strings.Split(s, ";") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			ret[parts[0]] = parts[1]
		} else {
			ret[parts[0]] = ""
		}
	}
	return ret
}

// Marshal encodes the media in SDP format.
func (m Media) Marshal() (*psdp.MediaDescription, error) {
	var protos []string

	if m.Profile == headers.TransportProfileSAVP {
		protos = []string{"RTP", "SAVP"}
	} else {
		protos = []string{"RTP", "AVP"}
	}

	md := &psdp.MediaDescription{
		MediaName: psdp.MediaName{
			Media:  string(m.Type),
			Protos: protos,
		},
	}

	if m.ID != "" {
		md.Attributes = append(md.Attributes, psdp.Attribute{
			Key:   "mid",
			Value: m.ID,
		})
	}

	if m.IsBackChannel {
		md.Attributes = append(md.Attributes, psdp.Attribute{
			Key: "sendonly",
		})
	}

	if m.RTCPDisabled {
		md.Bandwidth = []psdp.Bandwidth{
			{Type: "RR", Bandwidth: 0},
			{Type: "RS", Bandwidth: 0},
		}
	}

	if m.KeyMgmt != "" {
		md.Attributes = append(md.Attributes, psdp.Attribute{
			Key:   "key-mgmt",
			Value: m.KeyMgmt,
		})
	}

	md.Attributes = append(md.Attributes, psdp.Attribute{
		Key:   "control",
		Value: m.Control,
	})

	for _, forma := range m.Formats {
		typ := strconv.FormatUint(uint64(forma.PayloadType), 10)
		md.MediaName.Formats = append(md.MediaName.Formats, typ)

		if forma.RTPMap != "" {
			md.Attributes = append(md.Attributes, psdp.Attribute{
				Key:   "rtpmap",
				Value: typ + " " + forma.RTPMap,
			})
		}

		if len(forma.FMTP) != 0 {
			tmp := make([]string, len(forma.FMTP))
			for i, key := range sortedKeys(forma.FMTP) {
				if forma.FMTP[key] == "" {
					tmp[i] = key
				} else {
					tmp[i] = key + "=" + forma.FMTP[key]
				}
			}

			md.Attributes = append(md.Attributes, psdp.Attribute{
				Key:   "fmtp",
				Value: typ + " " + strings.Join(tmp, "; "),
			})
		}
	}

	return md, nil
}

// URL returns the absolute URL of the media.
func (m Media) URL(contentBase *base.URL) (*base.URL, error) {
	if contentBase == nil {
		return nil, fmt.Errorf("Content-Base header not provided")
	}

	// no control attribute, use base URL
	if m.Control == "" {
		return contentBase, nil
	}

	// control attribute contains an absolute path
	if strings.HasPrefix(m.Control, "rtsp://") ||
		strings.HasPrefix(m.Control, "rtsps://") {
		ur, err := base.ParseURL(m.Control)
		if err != nil {
			return nil, err
		}

		// copy host and credentials
		ur.Host = contentBase.Host
		ur.User = contentBase.User
		return ur, nil
	}

	// control attribute contains a relative path:
	// insert it at the end of the URL, after the query if there is one.
	strURL := contentBase.String()
	if m.Control[0] != '?' && m.Control[0] != '/' && !strings.HasSuffix(strURL, "/") {
		strURL += "/"
	}

	ur, err := base.ParseURL(strURL + m.Control)
	if err != nil {
		return nil, err
	}
	return ur, nil
}

// FindFormat finds the format with the given payload type.
func (m Media) FindFormat(payloadType uint8) (Format, bool) {
	for _, forma := range m.Formats {
		if forma.PayloadType == payloadType {
			return forma, true
		}
	}
	return Format{}, false
}
