package rtspgateway

// nullPuller is a Puller that does nothing: Start and Stop both succeed
// immediately, leaving the Source perpetually un-ready. It exists so a
// Source can be constructed and registered without a real upstream RTSP
// client, for standalone operation and tests.
type nullPuller struct{}

func (nullPuller) Start(*Source) error { return nil }
func (nullPuller) Stop()               {}
