package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/urbanride/dispatch/core/model"
	"github.com/urbanride/dispatch/infra/logger"
)

// Config defines the connection parameters for the rule ingestion client.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	RulesTopic  string `json:"rules_topic"`
	ReportTopic string `json:"report_topic"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies topic defaults.
func (c *Config) SetDefaults() {
	if c.RulesTopic == "" {
		c.RulesTopic = "pricing/rules/replace"
	}
	if c.ReportTopic == "" {
		c.ReportTopic = "pricing/rules/report"
	}
}

// Validate checks mandatory fields when the ingestor is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("mqtt client_id is required")
	}
	return nil
}

// RuleSink receives validated rule snapshots. Implemented by the coordinator.
type RuleSink interface {
	ReplaceRules(rules []model.PricingRule) error
}

// pahoClient is the subset of the Paho API the ingestor uses, extracted so
// tests can substitute a fake.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// RulesIngestor subscribes to the rules topic and atomically replaces the
// pricing rule snapshot on every received message. The outcome of each
// ingestion is published on the report topic for the administrative
// collaborator.
type RulesIngestor struct {
	cli    pahoClient
	cfg    Config
	sink   RuleSink
	logger logger.Logger
}

// ingestionReport is the payload published after each snapshot attempt.
type ingestionReport struct {
	ReportID string    `json:"report_id"`
	Rules    int       `json:"rules"`
	Accepted bool      `json:"accepted"`
	Error    string    `json:"error,omitempty"`
	Time     time.Time `json:"time"`
}

// NewRulesIngestor connects to the broker and subscribes to the rules topic.
func NewRulesIngestor(cfg Config, sink RuleSink) (*RulesIngestor, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("mqtt: nil rule sink")
	}

	log := logger.New("rules-ingestor")
	ing := &RulesIngestor{cfg: cfg, sink: sink, logger: log}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true)
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(cfg.RulesTopic, cfg.QoS, ing.onRules); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Warnf("MQTT connection lost: %v", err)
	}

	ing.cli = newMQTTClient(opts)
	if token := ing.cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return ing, nil
}

// onRules decodes the snapshot and hands it to the sink. Malformed payloads
// and rejected snapshots leave the active snapshot untouched.
func (i *RulesIngestor) onRules(_ paho.Client, msg paho.Message) {
	var rules []model.PricingRule
	if err := json.Unmarshal(msg.Payload(), &rules); err != nil {
		i.logger.Errorf("rules payload decode: %v", err)
		i.report(0, err)
		return
	}
	err := i.sink.ReplaceRules(rules)
	if err != nil {
		i.logger.Warnf("rules rejected: %v", err)
	} else {
		i.logger.Infof("rule snapshot replaced (%d rules)", len(rules))
	}
	i.report(len(rules), err)
}

func (i *RulesIngestor) report(count int, cause error) {
	rep := ingestionReport{
		ReportID: uuid.NewString(),
		Rules:    count,
		Accepted: cause == nil,
		Time:     time.Now().UTC(),
	}
	if cause != nil {
		rep.Error = cause.Error()
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		i.logger.Errorf("report marshal: %v", err)
		return
	}
	if token := i.cli.Publish(i.cfg.ReportTopic, i.cfg.QoS, false, payload); token.Wait() && token.Error() != nil {
		i.logger.Errorf("report publish: %v", token.Error())
	}
}

// Close disconnects from the broker.
func (i *RulesIngestor) Close() {
	if i.cli != nil && i.cli.IsConnected() {
		i.cli.Disconnect(250)
	}
}
