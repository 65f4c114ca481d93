package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/voltbus/curtaild/core/model"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakePaho struct {
	connected bool
	topics    []string
	payloads  [][]byte
}

func (f *fakePaho) IsConnected() bool       { return f.connected }
func (f *fakePaho) Connect() paho.Token     { f.connected = true; return &fakeToken{} }
func (f *fakePaho) Disconnect(quiesce uint) { f.connected = false }
func (f *fakePaho) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload.([]byte))
	return &fakeToken{}
}

func newFakePublisher(t *testing.T) (*Publisher, *fakePaho) {
	t.Helper()
	fake := &fakePaho{}
	orig := newMQTTClient
	newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return fake }
	t.Cleanup(func() { newMQTTClient = orig })

	pub, err := NewPublisher(Config{Enabled: true, Broker: "tcp://localhost:1883", Topic: "curtail/profiles"})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	return pub, fake
}

func TestPublishProfile(t *testing.T) {
	pub, fake := newFakePublisher(t)

	profile := model.NewChargeProfile(2, 17.5, time.Date(2025, 6, 11, 2, 30, 0, 0, time.UTC))
	if err := pub.PublishProfile("CHG1", profile); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(fake.payloads) != 1 || fake.topics[0] != "curtail/profiles" {
		t.Fatalf("unexpected publishes: %v", fake.topics)
	}
	var ann announcement
	if err := json.Unmarshal(fake.payloads[0], &ann); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if ann.ChargerID != "CHG1" || ann.ConnectorID != 2 || ann.RateKW != 17.5 {
		t.Fatalf("announcement = %+v", ann)
	}
	if ann.CommandID == "" {
		t.Fatalf("command id missing")
	}
}

func TestPublishDisconnected(t *testing.T) {
	pub, fake := newFakePublisher(t)
	fake.connected = false

	profile := model.NewChargeProfile(1, 10, time.Now())
	if err := pub.PublishProfile("CHG1", profile); err == nil {
		t.Fatalf("expected error when disconnected")
	}
}

func TestValidateDisabled(t *testing.T) {
	if err := (Config{}).Validate(); err != nil {
		t.Fatalf("disabled config must validate: %v", err)
	}
	if err := (Config{Enabled: true}).Validate(); err == nil {
		t.Fatalf("enabled config without broker must fail")
	}
}
