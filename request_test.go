package bip21_test

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/bitcointools/bip21"
	"github.com/bitcointools/bip21/amount"
)

func TestNewPaymentRequest(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		addr    string
		opts    []bip21.Option
		wantErr error
	}{
		{"address only", legacyAddr, nil, nil},
		{"nil option", legacyAddr, []bip21.Option{nil}, nil},
		{
			"all fields",
			legacyAddr,
			[]bip21.Option{
				bip21.WithAmount(1),
				bip21.WithLabel("l"),
				bip21.WithMessage("m"),
				bip21.WithLightning("ln"),
				bip21.WithPayJoin("https://example.com/pj"),
				bip21.WithExtension("foo", "bar"),
			},
			nil,
		},
		{"empty address", "", nil, bip21.ErrMissingAddress},
		{"negative amount", legacyAddr, []bip21.Option{bip21.WithAmount(-1)}, bip21.ErrNegativeAmount},
		{
			"amount above maximum",
			legacyAddr,
			[]bip21.Option{bip21.WithAmount(amount.MaxSatoshi + 1)},
			bip21.ErrExceedsMaximum,
		},
		{
			"amount twice",
			legacyAddr,
			[]bip21.Option{bip21.WithAmount(1), bip21.WithAmount(2)},
			bip21.ErrDuplicateParameter,
		},
		{"empty label", legacyAddr, []bip21.Option{bip21.WithLabel("")}, bip21.ErrEmptyValue},
		{"empty message", legacyAddr, []bip21.Option{bip21.WithMessage("")}, bip21.ErrEmptyValue},
		{"empty lightning", legacyAddr, []bip21.Option{bip21.WithLightning("")}, bip21.ErrEmptyValue},
		{"empty payjoin", legacyAddr, []bip21.Option{bip21.WithPayJoin("")}, bip21.ErrEmptyValue},
		{
			"label twice",
			legacyAddr,
			[]bip21.Option{bip21.WithLabel("a"), bip21.WithLabel("b")},
			bip21.ErrDuplicateParameter,
		},
		{"extension empty key", legacyAddr, []bip21.Option{bip21.WithExtension("", "v")}, bip21.ErrEmptyKey},
		{"extension empty value", legacyAddr, []bip21.Option{bip21.WithExtension("k", "")}, bip21.ErrEmptyValue},
		{
			"extension reserved key",
			legacyAddr,
			[]bip21.Option{bip21.WithExtension("amount", "1")},
			bip21.ErrReservedParameter,
		},
		{
			"extension pjos",
			legacyAddr,
			[]bip21.Option{bip21.WithExtension("pjos", "1")},
			bip21.ErrReservedParameter,
		},
		{
			"extension twice",
			legacyAddr,
			[]bip21.Option{bip21.WithExtension("k", "1"), bip21.WithExtension("k", "2")},
			bip21.ErrDuplicateParameter,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			got, err := bip21.NewPaymentRequest(c.addr, c.opts...)
			if diff := cmp.Diff(err, c.wantErr, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("bip21.NewPaymentRequest(%q, ...) error = %v, want %v\ndiff (-got +want):\n%v",
					c.addr, err, c.wantErr, diff)
			}
			if c.wantErr != nil && got != nil {
				t.Errorf("bip21.NewPaymentRequest(%q, ...) = %v, want nil", c.addr, got)
			}
		})
	}
}

func TestPaymentRequest_Accessors(t *testing.T) {
	t.Parallel()

	req := bip21.MustNewPaymentRequest(legacyAddr,
		bip21.WithAmount(1000),
		bip21.WithLabel("label"),
		bip21.WithMessage("message"),
		bip21.WithLightning(lnInvoice),
		bip21.WithPayJoin("https://localhost:3010"),
		bip21.WithExtension("foo", "1"),
		bip21.WithExtension("bar", "2"),
	)

	if got := req.Address(); got != legacyAddr {
		t.Errorf("req.Address() = %q, want %q", got, legacyAddr)
	}
	if got, ok := req.Amount(); !ok || got != 1000 {
		t.Errorf("req.Amount() = (%d, %v), want (1000, true)", got, ok)
	}
	strs := []struct {
		name string
		get  func() (string, bool)
		want string
	}{
		{"Label", req.Label, "label"},
		{"Message", req.Message, "message"},
		{"Lightning", req.Lightning, lnInvoice},
		{"PayJoin", req.PayJoin, "https://localhost:3010"},
	}
	for _, s := range strs {
		if got, ok := s.get(); !ok || got != s.want {
			t.Errorf("req.%s() = (%q, %v), want (%q, true)", s.name, got, ok, s.want)
		}
	}
	if allowed, ok := req.PayJoinOutputSubstitution(); allowed || !ok {
		t.Errorf("req.PayJoinOutputSubstitution() = (%v, %v), want (false, true)", allowed, ok)
	}

	wantExts := []bip21.Param{{Key: "foo", Value: "1"}, {Key: "bar", Value: "2"}}
	exts := req.Extensions()
	if diff := cmp.Diff(exts, wantExts); diff != "" {
		t.Errorf("req.Extensions() = %v, want %v\ndiff (-got +want):\n%v", exts, wantExts, diff)
	}
	exts[0].Value = "changed"
	if v, _ := req.Extension("foo"); v != "1" {
		t.Errorf("req.Extension(\"foo\") = %q after mutating a copy, want %q", v, "1")
	}
	if v, ok := req.Extension("FOO"); ok {
		t.Errorf("req.Extension(\"FOO\") = (%q, true), want (\"\", false)", v)
	}

	keys := make([]string, 0, 8)
	for _, p := range req.Parameters() {
		keys = append(keys, p.Key())
	}
	wantKeys := []string{"amount", "label", "message", "lightning", "pj", "pjos", "foo", "bar"}
	if diff := cmp.Diff(keys, wantKeys); diff != "" {
		t.Errorf("req.Parameters() keys = %v, want %v\ndiff (-got +want):\n%v", keys, wantKeys, diff)
	}
}

func TestPaymentRequest_Accessors_Empty(t *testing.T) {
	t.Parallel()

	for _, req := range []*bip21.PaymentRequest{nil, bip21.MustNewPaymentRequest(legacyAddr)} {
		if _, ok := req.Amount(); ok {
			t.Errorf("req.Amount() ok = true, want false")
		}
		for name, get := range map[string]func() (string, bool){
			"Label":     req.Label,
			"Message":   req.Message,
			"Lightning": req.Lightning,
			"PayJoin":   req.PayJoin,
		} {
			if v, ok := get(); ok {
				t.Errorf("req.%s() = (%q, true), want (\"\", false)", name, v)
			}
		}
		if _, ok := req.PayJoinOutputSubstitution(); ok {
			t.Errorf("req.PayJoinOutputSubstitution() ok = true, want false")
		}
		if exts := req.Extensions(); exts != nil {
			t.Errorf("req.Extensions() = %v, want nil", exts)
		}
		if ps := req.Parameters(); len(ps) != 0 {
			t.Errorf("req.Parameters() = %v, want empty", ps)
		}
	}
}

func TestPaymentRequest_Render(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		req  *bip21.PaymentRequest
		want string
	}{
		{"nil", nil, ""},
		{"minimal", bip21.MustNewPaymentRequest(legacyAddr), "bitcoin:" + legacyAddr},
		{
			"with extensions",
			bip21.MustNewPaymentRequest(legacyAddr,
				bip21.WithAmount(5_000_000_000),
				bip21.WithLabel("Go Bitcoin Tools"),
				bip21.WithMessage("Building tools for bitcoin in Go"),
				bip21.WithExtension("otherparameter1", "abc abc"),
				bip21.WithExtension("otherparameter2", "def def"),
			),
			"bitcoin:" + legacyAddr + "?amount=50&label=Go%20Bitcoin%20Tools" +
				"&message=Building%20tools%20for%20bitcoin%20in%20Go" +
				"&otherparameter1=abc%20abc&otherparameter2=def%20def",
		},
		{
			"extension key with spaces",
			bip21.MustNewPaymentRequest(legacyAddr, bip21.WithExtension("other parameter 1", "abc abc")),
			"bitcoin:" + legacyAddr + "?other%20parameter%201=abc%20abc",
		},
		{
			"unified qr",
			bip21.MustNewPaymentRequest(segwitAddr,
				bip21.WithAmount(1000),
				bip21.WithLabel("sbddesign: For lunch Tuesday"),
				bip21.WithMessage("For lunch Tuesday"),
				bip21.WithLightning(lnInvoice),
			),
			"bitcoin:" + segwitAddr + "?amount=0.00001&label=sbddesign%3A%20For%20lunch%20Tuesday" +
				"&message=For%20lunch%20Tuesday&lightning=" + lnInvoice,
		},
		{
			"payjoin",
			bip21.MustNewPaymentRequest(legacyAddr, bip21.WithPayJoin("https://localhost:3010")),
			"bitcoin:" + legacyAddr + "?pj=https%3A%2F%2Flocalhost%3A3010&pjos=0",
		},
		{
			"payjoin before extensions",
			bip21.MustNewPaymentRequest(legacyAddr,
				bip21.WithExtension("foo", "1"),
				bip21.WithPayJoin("https://localhost:3010"),
				bip21.WithLabel("a"),
			),
			"bitcoin:" + legacyAddr + "?label=a&pj=https%3A%2F%2Flocalhost%3A3010&pjos=0&foo=1",
		},
		{
			"reserved characters",
			bip21.MustNewPaymentRequest(legacyAddr, bip21.WithMessage("a&b=c?d%e+f/g")),
			"bitcoin:" + legacyAddr + "?message=a%26b%3Dc%3Fd%25e%2Bf%2Fg",
		},
		{"zero amount", bip21.MustNewPaymentRequest(legacyAddr, bip21.WithAmount(0)), "bitcoin:" + legacyAddr + "?amount=0"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if got := c.req.Render(); got != c.want {
				t.Errorf("req.Render() = %q, want %q", got, c.want)
			}
			if got := c.req.String(); got != c.want {
				t.Errorf("req.String() = %q, want %q", got, c.want)
			}
			var sb strings.Builder
			if _, err := c.req.RenderTo(&sb); err != nil {
				t.Fatalf("req.RenderTo(sb) error = %v, want nil", err)
			}
			if got := sb.String(); got != c.want {
				t.Errorf("sb.String() = %q, want %q", got, c.want)
			}
			if c.req != nil && strings.Contains(c.want, "pjos") != strings.Contains(c.want, "pj=") {
				t.Errorf("req.Render() = %q, pjos must appear exactly with pj", c.want)
			}
		})
	}
}

func TestPaymentRequest_RoundTrip(t *testing.T) {
	t.Parallel()

	reqs := []*bip21.PaymentRequest{
		bip21.MustNewPaymentRequest(legacyAddr),
		bip21.MustNewPaymentRequest(legacyAddr, bip21.WithAmount(amount.MaxSatoshi)),
		bip21.MustNewPaymentRequest(segwitAddr,
			bip21.WithAmount(1),
			bip21.WithLabel("Ünïcödé 世界 & friends"),
			bip21.WithMessage("100% = 1/1; a+b?"),
			bip21.WithLightning(lnInvoice),
			bip21.WithPayJoin("https://payjoin.example.com:8443/pj?v=2&x=%41"),
			bip21.WithExtension("ключ", "значение"),
			bip21.WithExtension("req-x", "="),
			bip21.WithExtension("~._-", "~._-"),
		),
	}

	for _, want := range reqs {
		t.Run(want.String(), func(t *testing.T) {
			t.Parallel()

			got, err := bip21.Parse(want.Render())
			if err != nil {
				t.Fatalf("bip21.Parse(%q) error = %v, want nil", want.Render(), err)
			}
			if diff := cmp.Diff(got, want); diff != "" {
				t.Errorf("bip21.Parse(%q) = %v, want %v\ndiff (-got +want):\n%v", want.Render(), got, want, diff)
			}
			if got.Render() != want.Render() {
				t.Errorf("req.Render() = %q, want %q", got.Render(), want.Render())
			}
		})
	}
}

func TestPaymentRequest_Format(t *testing.T) {
	t.Parallel()

	req := bip21.MustNewPaymentRequest(legacyAddr, bip21.WithLabel("Luke Jr"))
	want := "bitcoin:" + legacyAddr + "?label=Luke%20Jr"

	cases := []struct {
		format string
		want   string
	}{
		{"%s", want},
		{"%+s", want},
		{"%q", `"` + want + `"`},
	}
	for _, c := range cases {
		if got := fmt.Sprintf(c.format, req); got != c.want {
			t.Errorf("fmt.Sprintf(%q, req) = %q, want %q", c.format, got, c.want)
		}
	}
	if got := fmt.Sprintf("%v", req); !strings.Contains(got, legacyAddr) {
		t.Errorf("fmt.Sprintf(\"%%v\", req) = %q, want it to contain %q", got, legacyAddr)
	}
}

func TestPaymentRequest_Equal(t *testing.T) {
	t.Parallel()

	base := func(opts ...bip21.Option) *bip21.PaymentRequest {
		return bip21.MustNewPaymentRequest(legacyAddr, append([]bip21.Option{bip21.WithAmount(1)}, opts...)...)
	}

	cases := []struct {
		name string
		req  *bip21.PaymentRequest
		val  any
		want bool
	}{
		{"nil nil", nil, (*bip21.PaymentRequest)(nil), true},
		{"nil non-nil", nil, base(), false},
		{"non-nil nil", base(), (*bip21.PaymentRequest)(nil), false},
		{"same", base(), base(), true},
		{"value", base(), *base(), true},
		{"other type", base(), "bitcoin:" + legacyAddr + "?amount=0.00000001", false},
		{"other address", base(), bip21.MustNewPaymentRequest(segwitAddr, bip21.WithAmount(1)), false},
		{"other amount", base(), bip21.MustNewPaymentRequest(legacyAddr, bip21.WithAmount(2)), false},
		{"missing amount", base(), bip21.MustNewPaymentRequest(legacyAddr), false},
		{"other label", base(bip21.WithLabel("a")), base(bip21.WithLabel("b")), false},
		{
			"extension order",
			base(bip21.WithExtension("a", "1"), bip21.WithExtension("b", "2")),
			base(bip21.WithExtension("b", "2"), bip21.WithExtension("a", "1")),
			false,
		},
		{
			"same extensions",
			base(bip21.WithExtension("a", "1"), bip21.WithPayJoin("x")),
			base(bip21.WithPayJoin("x"), bip21.WithExtension("a", "1")),
			true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if got := c.req.Equal(c.val); got != c.want {
				t.Errorf("req.Equal(%v) = %v, want %v", c.val, got, c.want)
			}
		})
	}
}

func TestPaymentRequest_MarshalText(t *testing.T) {
	t.Parallel()

	want := bip21.MustNewPaymentRequest(legacyAddr, bip21.WithAmount(150_000_000), bip21.WithMessage("hi there"))
	text, err := want.MarshalText()
	if err != nil {
		t.Fatalf("req.MarshalText() error = %v, want nil", err)
	}
	if got, wantText := string(text), "bitcoin:"+legacyAddr+"?amount=1.5&message=hi%20there"; got != wantText {
		t.Errorf("req.MarshalText() = %q, want %q", got, wantText)
	}

	var got bip21.PaymentRequest
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("req.UnmarshalText(%q) error = %v, want nil", text, err)
	}
	if diff := cmp.Diff(&got, want); diff != "" {
		t.Errorf("req.UnmarshalText(%q) = %v, want %v\ndiff (-got +want):\n%v", text, &got, want, diff)
	}

	if err := got.UnmarshalText([]byte("bitcoin:" + legacyAddr + "?amount=x")); !bip21.IsValidationErr(err) {
		t.Errorf("req.UnmarshalText(...) error = %v, want validation error", err)
	}
	if got.Address() != "" {
		t.Errorf("req.Address() = %q after failed unmarshal, want empty", got.Address())
	}
}

func TestPaymentRequest_LogValue(t *testing.T) {
	t.Parallel()

	req := bip21.MustNewPaymentRequest(legacyAddr,
		bip21.WithAmount(1000),
		bip21.WithPayJoin("https://localhost:3010"),
		bip21.WithExtension("foo", "1"),
	)

	v := req.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("req.LogValue().Kind() = %v, want %v", v.Kind(), slog.KindGroup)
	}
	got := make(map[string]string)
	for _, a := range v.Group() {
		got[a.Key] = a.Value.String()
	}
	want := map[string]string{
		"address":    legacyAddr,
		"amount":     "0.00001",
		"pj":         "https://localhost:3010",
		"pjos":       "false",
		"extensions": "1",
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("req.LogValue() = %v, want %v\ndiff (-got +want):\n%v", got, want, diff)
	}
}

func BenchmarkPaymentRequest_Render(b *testing.B) {
	req := bip21.MustNewPaymentRequest(segwitAddr,
		bip21.WithAmount(1000),
		bip21.WithLabel("sbddesign: For lunch Tuesday"),
		bip21.WithMessage("For lunch Tuesday"),
		bip21.WithLightning(lnInvoice),
	)

	b.ReportAllocs()
	for b.Loop() {
		_ = req.Render()
	}
}
