package gateway

import "testing"

func TestSignVerify(t *testing.T) {
	secret := []byte("shh")
	body := []byte(`{"external_ref":"r1","outcome":"success"}`)
	sig := Sign(secret, body)

	if !Verify(secret, body, sig) {
		t.Fatal("own signature rejected")
	}

	tests := map[string]struct {
		secret []byte
		body   []byte
		sig    string
	}{
		"empty signature":  {secret, body, ""},
		"not hex":          {secret, body, "zz"},
		"truncated":        {secret, body, sig[:len(sig)-2]},
		"tampered body":    {secret, []byte(`{"external_ref":"r1","outcome":"failed"}`), sig},
		"other secret":     {[]byte("nope"), body, sig},
		"no secret at all": {nil, body, sig},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if Verify(tt.secret, tt.body, tt.sig) {
				t.Error("signature accepted")
			}
		})
	}
}
