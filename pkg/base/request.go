package base

import (
	"bufio"
	"fmt"
	"strconv"
)

// Request is a RTSP request.
type Request struct {
	// request method.
	Method Method

	// request url.
	URL *URL

	// request version.
	Version Version

	// header values.
	Header Header

	// optional body.
	Body []byte
}

// Read reads a request.
func (req *Request) Read(rb *bufio.Reader) error {
	byts, err := readUntil(rb, ' ', requestMaxMethodLength)
	if err != nil {
		return err
	}
	req.Method = Method(byts[:len(byts)-1])

	if req.Method == "" {
		return fmt.Errorf("empty method")
	}

	byts, err = readUntil(rb, ' ', requestMaxURLLength)
	if err != nil {
		return err
	}
	rawURL := string(byts[:len(byts)-1])

	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	ur, err := ParseURL(rawURL)
	if err != nil {
		return fmt.Errorf("unable to parse URL (%v)", rawURL)
	}
	req.URL = ur

	byts, err = readUntil(rb, '\r', requestMaxProtocolLength)
	if err != nil {
		return err
	}
	proto := string(byts[:len(byts)-1])

	req.Version, err = parseVersion(proto)
	if err != nil {
		return err
	}

	err = expectByte(rb, '\n')
	if err != nil {
		return err
	}

	req.Header = make(Header)
	err = req.Header.read(rb)
	if err != nil {
		return err
	}

	err = (*messageBody)(&req.Body).read(rb, req.Header)
	if err != nil {
		return err
	}

	return nil
}

// Write writes a request.
func (req Request) Write(bw *bufio.Writer) error {
	version := req.Version
	if version == (Version{}) {
		version = Version10
	}

	urStr := req.URL.CloneWithoutCredentials().String()
	_, err := bw.Write([]byte(string(req.Method) + " " + urStr + " " + version.String() + "\r\n"))
	if err != nil {
		return err
	}

	if req.Header == nil {
		req.Header = make(Header)
	}

	if len(req.Body) != 0 {
		req.Header["Content-Length"] = HeaderValue{strconv.FormatInt(int64(len(req.Body)), 10)}
	}

	err = req.Header.write(bw)
	if err != nil {
		return err
	}

	err = messageBody(req.Body).write(bw)
	if err != nil {
		return err
	}

	return bw.Flush()
}

func parseVersion(proto string) (Version, error) {
	var major, minor int
	n, err := fmt.Sscanf(proto, "RTSP/%d.%d", &major, &minor)
	if err != nil || n != 2 {
		return Version{}, fmt.Errorf("invalid protocol (%v)", proto)
	}
	return Version{Major: major, Minor: minor}, nil
}
