package props_test

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/bishiboosh/properties-serializer/internal/flat"
	"github.com/bishiboosh/properties-serializer/internal/flatmap"
	"github.com/bishiboosh/properties-serializer/internal/props"
	"github.com/bishiboosh/properties-serializer/internal/proptext"
	"github.com/bishiboosh/properties-serializer/internal/shape"
	"github.com/bishiboosh/properties-serializer/internal/trace"
)

type gradleWrapper struct {
	DistributionBase string `props:"distributionBase,required"`
	DistributionPath string `props:"distributionPath,required"`
	DistributionURL  string `props:"distributionUrl,required"`
	ZipStoreBase     string `props:"zipStoreBase,required"`
	ZipStorePath     string `props:"zipStorePath,required"`
}

const gradleFile = `#Fri Jul 11 11:11:51 CEST 2025
distributionBase=GRADLE_USER_HOME
distributionPath=wrapper/dists
distributionUrl=https\://services.gradle.org/distributions/gradle-9.0.0-rc-1-bin.zip
zipStoreBase=GRADLE_USER_HOME
zipStorePath=wrapper/dists
`

var gradleValue = gradleWrapper{
	DistributionBase: "GRADLE_USER_HOME",
	DistributionPath: "wrapper/dists",
	DistributionURL:  "https://services.gradle.org/distributions/gradle-9.0.0-rc-1-bin.zip",
	ZipStoreBase:     "GRADLE_USER_HOME",
	ZipStorePath:     "wrapper/dists",
}

func TestDecodeGradleWrapper(t *testing.T) {
	ctx := context.Background()
	f := props.New()
	d, err := shape.For[gradleWrapper](f.Registry())
	if err != nil {
		t.Fatal(err)
	}

	fromText, err := f.DecodeFromText(ctx, gradleFile, d)
	if err != nil {
		t.Fatal(err)
	}
	fromBytes, err := f.DecodeFromBytes(ctx, []byte(gradleFile), d)
	if err != nil {
		t.Fatal(err)
	}
	fromStream, err := f.DecodeFrom(ctx, iotest.OneByteReader(strings.NewReader(gradleFile)), d)
	if err != nil {
		t.Fatal(err)
	}
	for i, got := range []any{fromText, fromBytes, fromStream} {
		if got != gradleValue {
			t.Errorf("entry point %d decoded %+v", i, got)
		}
	}

	typed, err := props.Decode[gradleWrapper](ctx, f, []byte(gradleFile))
	if err != nil || typed != gradleValue {
		t.Errorf("Decode = %+v, %v", typed, err)
	}
}

func usefulLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func TestEncodeGradleWrapper(t *testing.T) {
	ctx := context.Background()
	f := props.New()
	want := []string{
		"distributionBase=GRADLE_USER_HOME",
		"distributionPath=wrapper/dists",
		`distributionUrl=https\://services.gradle.org/distributions/gradle-9.0.0-rc-1-bin.zip`,
		"zipStoreBase=GRADLE_USER_HOME",
		"zipStorePath=wrapper/dists",
	}

	var sink bytes.Buffer
	if err := f.EncodeTo(ctx, &sink, gradleValue, nil); err != nil {
		t.Fatal(err)
	}
	text, err := f.EncodeToText(ctx, gradleValue, nil)
	if err != nil {
		t.Fatal(err)
	}
	data, err := props.Marshal(gradleValue)
	if err != nil {
		t.Fatal(err)
	}
	for i, out := range []string{sink.String(), text, string(data)} {
		got := usefulLines(out)
		if !slices.Equal(got, want) {
			t.Errorf("output %d lines = %q", i, got)
		}
	}
}

func TestMissingRequiredField(t *testing.T) {
	var g gradleWrapper
	err := props.Unmarshal([]byte("distributionBase=x\n"), &g)
	if !errors.Is(err, flat.ErrMissingRequiredKey) {
		t.Fatalf("error = %v", err)
	}
	var pe *flat.PathError
	if !errors.As(err, &pe) || pe.Tag != "distributionPath" {
		t.Errorf("error %v not at distributionPath", err)
	}
}

type endpoint interface{ URL() string }

type httpEndpoint struct {
	Host string `props:"host"`
	Port int    `props:"port"`
}

func (h httpEndpoint) URL() string { return "http://" + h.Host }

type fileEndpoint struct {
	Path string `props:"path"`
}

func (f fileEndpoint) URL() string { return "file://" + f.Path }

type service struct {
	Name      string            `props:"name"`
	Endpoints []endpoint        `props:"endpoints"`
	Env       map[string]string `props:"env,omitempty"`
}

func TestPolymorphicWithRegistry(t *testing.T) {
	reg := shape.NewRegistry()
	if err := shape.RegisterVariant[endpoint](reg, "http", httpEndpoint{}); err != nil {
		t.Fatal(err)
	}
	if err := shape.RegisterVariant[endpoint](reg, "file", fileEndpoint{}); err != nil {
		t.Fatal(err)
	}
	f := props.New(props.WithRegistry(reg))
	ctx := context.Background()

	in := service{
		Name:      "api",
		Endpoints: []endpoint{httpEndpoint{Host: "h", Port: 80}, fileEndpoint{Path: "/tmp/s"}},
		Env:       map[string]string{"MODE": "prod"},
	}
	text, err := f.EncodeToText(ctx, in, nil)
	if err != nil {
		t.Fatal(err)
	}
	wantText := "name=api\n" +
		"endpoints.0.type=http\n" +
		"endpoints.0.host=h\n" +
		"endpoints.0.port=80\n" +
		"endpoints.1.type=file\n" +
		"endpoints.1.path=/tmp/s\n" +
		"env.0=MODE\n" +
		"env.1=prod\n"
	if text != wantText {
		t.Errorf("text =\n%s\nwant\n%s", text, wantText)
	}

	out, err := props.Decode[service](ctx, f, []byte(text))
	if err != nil {
		t.Fatal(err)
	}
	if out.Name != in.Name || len(out.Endpoints) != 2 || out.Endpoints[1].URL() != "file:///tmp/s" || out.Env["MODE"] != "prod" {
		t.Errorf("decoded %+v", out)
	}

	_, err = props.Decode[service](ctx, f, []byte("endpoints.0.type=ftp\n"))
	if !errors.Is(err, flat.ErrUnknownDiscriminator) {
		t.Errorf("unknown variant error = %v", err)
	}
}

func TestMapEntryPoints(t *testing.T) {
	ctx := context.Background()
	f := props.New()
	m, err := f.EncodeToMap(ctx, map[string]int{"b": 2, "a": 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Equal(flatmap.Of("0", "a", "1", "1", "2", "b", "3", "2")) {
		t.Errorf("map = %v", m)
	}
	d, _ := shape.For[map[string]int](f.Registry())
	v, err := f.DecodeFromMap(ctx, m, d)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.(map[string]int); got["a"] != 1 || got["b"] != 2 {
		t.Errorf("decoded %v", got)
	}
}

func TestInvalidInput(t *testing.T) {
	ctx := context.Background()
	f := props.New()
	d, _ := shape.For[gradleWrapper](f.Registry())

	if _, err := f.DecodeFromText(ctx, "k=\\u00G1", d); !errors.Is(err, flat.ErrInvalidUnicodeEscape) {
		t.Errorf("bad escape error = %v", err)
	}
	if _, err := f.DecodeFromText(ctx, "k=€", d); !errors.Is(err, proptext.ErrNotLatin1) {
		t.Errorf("non Latin-1 error = %v", err)
	}
	if err := f.Unmarshal(ctx, nil, gradleWrapper{}); !errors.Is(err, props.ErrInvalidTarget) {
		t.Errorf("non-pointer target error = %v", err)
	}
	if _, err := f.DecodeFromBytes(ctx, nil, nil); !errors.Is(err, shape.ErrUnsupportedType) {
		t.Errorf("nil descriptor error = %v", err)
	}
	if _, err := f.EncodeToBytes(ctx, nil, nil); !errors.Is(err, shape.ErrUnsupportedType) {
		t.Errorf("nil value error = %v", err)
	}
}

func TestCallSpans(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDetail)
	f := props.New(props.WithTracer(ring))
	if _, err := f.EncodeToText(context.Background(), gradleValue, nil); err != nil {
		t.Fatal(err)
	}

	var begins []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin {
			begins = append(begins, ev.Scope.String()+":"+ev.Name)
		}
	}
	want := []string{"call:EncodeToBytes", "phase:encode", "phase:write"}
	if !slices.Equal(begins, want) {
		t.Errorf("spans = %v, want %v", begins, want)
	}
}

func TestEntryPointsAtDebug(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	f := props.New()
	d, _ := shape.For[gradleWrapper](f.Registry())
	if _, err := f.DecodeFromText(ctx, gradleFile, d); err != nil {
		t.Fatal(err)
	}
	var entries int
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindPoint && ev.Scope == trace.ScopeEntry {
			entries++
		}
	}
	if entries != 5 {
		t.Errorf("got %d entry events, want 5", entries)
	}
}
