package description

import (
	"testing"

	psdp "github.com/pion/sdp/v3"
	"github.com/stretchr/testify/require"
)

var casesSession = []struct {
	name string
	in   string
	out  string
	desc Session
}{
	{
		"one format for each media, absolute",
		"v=0\r\n" +
			"o=- 0 0 IN IP4 10.0.0.131\r\n" +
			"s=Media Presentation\r\n" +
			"i=samsung\r\n" +
			"c=IN IP4 0.0.0.0\r\n" +
			"b=AS:2632\r\n" +
			"t=0 0\r\n" +
			"a=control:rtsp://10.0.100.50/profile5/media.smp\r\n" +
			"a=range:npt=now-\r\n" +
			"m=video 42504 RTP/AVP 97\r\n" +
			"b=AS:2560\r\n" +
			"a=rtpmap:97 H264/90000\r\n" +
			"a=control:rtsp://10.0.100.50/profile5/media.smp/trackID=v\r\n" +
			"a=fmtp:97 packetization-mode=1;profile-level-id=640028\r\n" +
			"m=audio 42506 RTP/AVP 0\r\n" +
			"b=AS:64\r\n" +
			"a=rtpmap:0 PCMU/8000\r\n" +
			"a=control:rtsp://10.0.100.50/profile5/media.smp/trackID=a\r\n" +
			"a=recvonly\r\n",
		"v=0\r\n" +
			"o=- 0 0 IN IP4 127.0.0.1\r\n" +
			"s=Media Presentation\r\n" +
			"c=IN IP4 0.0.0.0\r\n" +
			"t=0 0\r\n" +
			"m=video 0 RTP/AVP 97\r\n" +
			"a=control:rtsp://10.0.100.50/profile5/media.smp/trackID=v\r\n" +
			"a=rtpmap:97 H264/90000\r\n" +
			"a=fmtp:97 packetization-mode=1; profile-level-id=640028\r\n" +
			"m=audio 0 RTP/AVP 0\r\n" +
			"a=control:rtsp://10.0.100.50/profile5/media.smp/trackID=a\r\n" +
			"a=rtpmap:0 PCMU/8000\r\n",
		Session{
			Title: `Media Presentation`,
			Medias: []*Media{
				{
					Type:    MediaTypeVideo,
					Control: "rtsp://10.0.100.50/profile5/media.smp/trackID=v",
					Formats: []Format{{
						PayloadType: 97,
						RTPMap:      "H264/90000",
						FMTP: map[string]string{
							"packetization-mode": "1",
							"profile-level-id":   "640028",
						},
					}},
				},
				{
					Type:    MediaTypeAudio,
					Control: "rtsp://10.0.100.50/profile5/media.smp/trackID=a",
					Formats: []Format{{
						PayloadType: 0,
						RTPMap:      "PCMU/8000",
					}},
				},
			},
		},
	},
	{
		"back channel",
		"v=0\r\n" +
			"o= 2890842807 IN IP4 192.168.0.1\r\n" +
			"s=RTSP Session with audiobackchannel\r\n" +
			"m=audio 0 RTP/AVP 0\r\n" +
			"a=control:rtsp://192.168.0.1/audio\r\n" +
			"a=rtpmap:0 PCMU/8000\r\n" +
			"a=recvonly\r\n" +
			"m=audio 0 RTP/AVP 0\r\n" +
			"a=control:rtsp://192.168.0.1/audioback\r\n" +
			"a=rtpmap:0 PCMU/8000\r\n" +
			"a=sendonly\r\n",
		"v=0\r\n" +
			"o=- 0 0 IN IP4 127.0.0.1\r\n" +
			"s=RTSP Session with audiobackchannel\r\n" +
			"c=IN IP4 0.0.0.0\r\n" +
			"t=0 0\r\n" +
			"m=audio 0 RTP/AVP 0\r\n" +
			"a=control:rtsp://192.168.0.1/audio\r\n" +
			"a=rtpmap:0 PCMU/8000\r\n" +
			"m=audio 0 RTP/AVP 0\r\n" +
			"a=sendonly\r\n" +
			"a=control:rtsp://192.168.0.1/audioback\r\n" +
			"a=rtpmap:0 PCMU/8000\r\n",
		Session{
			Title: `RTSP Session with audiobackchannel`,
			Medias: []*Media{
				{
					Type:    MediaTypeAudio,
					Control: "rtsp://192.168.0.1/audio",
					Formats: []Format{{PayloadType: 0, RTPMap: "PCMU/8000"}},
				},
				{
					Type:          MediaTypeAudio,
					IsBackChannel: true,
					Control:       "rtsp://192.168.0.1/audioback",
					Formats:       []Format{{PayloadType: 0, RTPMap: "PCMU/8000"}},
				},
			},
		},
	},
	{
		"ulpfec rfc5109",
		"v=0\r\n" +
			"o=adam 289083124 289083124 IN IP4 host.example.com\r\n" +
			"s=ULP FEC Seminar\r\n" +
			"t=0 0\r\n" +
			"c=IN IP4 224.2.17.12/127\r\n" +
			"a=group:FEC 1 2\r\n" +
			"m=audio 30000 RTP/AVP 0\r\n" +
			"a=mid:1\r\n" +
			"a=rtpmap:0 PCMU/8000\r\n" +
			"m=application 30002 RTP/AVP 100\r\n" +
			"a=rtpmap:100 ulpfec/8000\r\n" +
			"a=mid:2\r\n",
		"v=0\r\n" +
			"o=- 0 0 IN IP4 127.0.0.1\r\n" +
			"s=ULP FEC Seminar\r\n" +
			"c=IN IP4 0.0.0.0\r\n" +
			"t=0 0\r\n" +
			"a=group:FEC 1 2\r\n" +
			"m=audio 0 RTP/AVP 0\r\n" +
			"a=mid:1\r\n" +
			"a=control\r\n" +
			"a=rtpmap:0 PCMU/8000\r\n" +
			"m=application 0 RTP/AVP 100\r\n" +
			"a=mid:2\r\n" +
			"a=control\r\n" +
			"a=rtpmap:100 ulpfec/8000\r\n",
		Session{
			Title: "ULP FEC Seminar",
			FECGroups: []SessionFECGroup{
				{"1", "2"},
			},
			Medias: []*Media{
				{
					ID:      "1",
					Type:    MediaTypeAudio,
					Formats: []Format{{PayloadType: 0, RTPMap: "PCMU/8000"}},
				},
				{
					ID:   "2",
					Type: MediaTypeApplication,
					Formats: []Format{{
						PayloadType: 100,
						RTPMap:      "ulpfec/8000",
					}},
				},
			},
		},
	},
}

func TestSessionUnmarshal(t *testing.T) {
	for _, ca := range casesSession {
		t.Run(ca.name, func(t *testing.T) {
			var sd psdp.SessionDescription
			err := sd.Unmarshal([]byte(ca.in))
			require.NoError(t, err)

			var desc Session
			err = desc.Unmarshal(&sd)
			require.NoError(t, err)
			require.Equal(t, ca.desc, desc)
		})
	}
}

func TestSessionMarshal(t *testing.T) {
	for _, ca := range casesSession {
		t.Run(ca.name, func(t *testing.T) {
			byts, err := ca.desc.Marshal(false)
			require.NoError(t, err)
			require.Equal(t, ca.out, string(byts))
		})
	}
}

func TestSessionFindFormat(t *testing.T) {
	md := &Media{
		Type: MediaTypeVideo,
		Formats: []Format{
			{PayloadType: 96, RTPMap: "VP8/90000"},
			{PayloadType: 97, RTPMap: "rtx/90000", FMTP: map[string]string{"apt": "96"}},
		},
	}

	desc := &Session{
		Medias: []*Media{
			{
				Type:    MediaTypeAudio,
				Formats: []Format{{PayloadType: 111, RTPMap: "opus/48000/2"}},
			},
			md,
		},
	}

	me, forma, ok := desc.FindFormat(97)
	require.True(t, ok)
	require.Equal(t, md, me)
	require.Equal(t, "rtx/90000", forma.RTPMap)

	_, _, ok = desc.FindFormat(200)
	require.False(t, ok)
}

func TestSessionUnmarshalErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		in   string
	}{
		{
			"no media streams",
			"v=0\r\n" +
				"o=- 0 0 IN IP4 127.0.0.1\r\n" +
				"s=-\r\n" +
				"t=0 0\r\n",
		},
		{
			"invalid media",
			"v=0\r\n" +
				"o=- 0 0 IN IP4 127.0.0.1\r\n" +
				"s=-\r\n" +
				"t=0 0\r\n" +
				"m=video 0 RTP/AVP xyz\r\n",
		},
		{
			"media ids sent partially",
			"v=0\r\n" +
				"o=- 0 0 IN IP4 127.0.0.1\r\n" +
				"s=-\r\n" +
				"t=0 0\r\n" +
				"m=video 0 RTP/AVP 96\r\n" +
				"a=mid:0\r\n" +
				"a=rtpmap:96 H264/90000\r\n" +
				"m=audio 0 RTP/AVP 0\r\n" +
				"a=rtpmap:0 PCMU/8000\r\n",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var sd psdp.SessionDescription
			err := sd.Unmarshal([]byte(ca.in))
			require.NoError(t, err)

			var desc Session
			err = desc.Unmarshal(&sd)
			require.Error(t, err)
		})
	}
}

func FuzzSessionUnmarshalErrors(f *testing.F) {
	for _, ca := range casesSession {
		f.Add(ca.in)
	}

	f.Fuzz(func(_ *testing.T, enc string) {
		var sd psdp.SessionDescription
		err := sd.Unmarshal([]byte(enc))
		if err != nil {
			return
		}

		var desc Session
		desc.Unmarshal(&sd) //nolint:errcheck
	})
}
