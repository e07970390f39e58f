package pmsd

import (
	"fmt"
	"time"

	"github.com/keti-strato/pms/pkg/domain"
	"github.com/keti-strato/pms/pkg/workloads/prediction"
	"github.com/keti-strato/pms/pkg/workloads/resources"
	"github.com/shopspring/decimal"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/pmsd.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

type ConfigMarshall struct {
	Port       int32                     `yaml:"port"`
	Platform   *PlatformConfigMarshall   `yaml:"platform"`
	Database   *DatabaseConfigMarshall   `yaml:"database,omitempty"`
	Prediction *PredictionConfigMarshall `yaml:"prediction,omitempty"`
	Workloads  *WorkloadsConfigMarshall  `yaml:"workloads,omitempty"`
	Mirror     *MirrorConfigMarshall     `yaml:"mirror,omitempty"`
	Submission *SubmissionConfigMarshall `yaml:"submission,omitempty"`
	Timeouts   *TimeoutsConfigMarshall   `yaml:"timeouts,omitempty"`
	Kubernetes *KubernetesConfigMarshall `yaml:"kubernetes,omitempty"`
}

var _ Marshalled[*Config] = &ConfigMarshall{}

func (c *ConfigMarshall) trySeal(path string) *Config {
	return &Config{
		port:       required(c.Port, path+".port"),
		platform:   nonnil(c.Platform, path+".platform").trySeal(path + ".platform"),
		database:   orZero(c.Database).trySeal(path + ".database"),
		prediction: orZero(c.Prediction).trySeal(path + ".prediction"),
		workloads:  orZero(c.Workloads).trySeal(path + ".workloads"),
		mirror:     orZero(c.Mirror).trySeal(path + ".mirror"),
		submission: orZero(c.Submission).trySeal(path + ".submission"),
		timeouts:   orZero(c.Timeouts).trySeal(path + ".timeouts"),
		kubernetes: orZero(c.Kubernetes).trySeal(path + ".kubernetes"),
	}
}

type PlatformConfigMarshall struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

func (p *PlatformConfigMarshall) trySeal(path string) *PlatformConfig {
	return &PlatformConfig{
		url:   required(p.URL, path+".url"),
		token: required(p.Token, path+".token"),
	}
}

type DatabaseConfigMarshall struct {
	URL      string `yaml:"url,omitempty"`
	MaxConns int32  `yaml:"maxConns,omitempty"`
}

func (d *DatabaseConfigMarshall) trySeal(path string) *DatabaseConfig {
	maxConns := d.MaxConns
	if maxConns == 0 {
		maxConns = 4
	}
	if maxConns < 0 {
		panic(fmt.Errorf("%s.maxConns should be positive", path))
	}
	return &DatabaseConfig{url: d.URL, maxConns: maxConns}
}

// Resources of a workload case, in Kubernetes quantities.
type PredictionMarshall struct {
	Requests *ResourcesMarshall `yaml:"requests"`
	Limits   *ResourcesMarshall `yaml:"limits"`
}

type ResourcesMarshall struct {
	CPU    string `yaml:"cpu"`
	Memory string `yaml:"memory"`
}

func (p *PredictionMarshall) trySeal(path string) *prediction.Prediction {
	requests := nonnil(p.Requests, path+".requests")
	limits := nonnil(p.Limits, path+".limits")
	return &prediction.Prediction{
		RequestCPU:    cpu(requests.CPU, path+".requests.cpu"),
		RequestMemory: memory(requests.Memory, path+".requests.memory"),
		LimitCPU:      cpu(limits.CPU, path+".limits.cpu"),
		LimitMemory:   memory(limits.Memory, path+".limits.memory"),
	}
}

type CacheConfigMarshall struct {
	Redis  string `yaml:"redis"`
	Prefix string `yaml:"prefix,omitempty"`
	TTL    string `yaml:"ttl,omitempty"`
}

func (c *CacheConfigMarshall) trySeal(path string) *CacheConfig {
	prefix := c.Prefix
	if prefix == "" {
		prefix = "pms:prediction:"
	}
	return &CacheConfig{
		redis:  required(c.Redis, path+".redis"),
		prefix: prefix,
		ttl:    duration(c.TTL, 10*time.Minute, path+".ttl"),
	}
}

type PredictionConfigMarshall struct {
	URL     string                         `yaml:"url,omitempty"`
	Timeout string                         `yaml:"timeout,omitempty"`
	Cases   map[string]*PredictionMarshall `yaml:"cases,omitempty"`
	Default *PredictionMarshall            `yaml:"default,omitempty"`
	Cache   *CacheConfigMarshall           `yaml:"cache,omitempty"`
}

func (p *PredictionConfigMarshall) trySeal(path string) *PredictionConfig {
	cases := map[string]prediction.Prediction{}
	for name, c := range p.Cases {
		cpath := fmt.Sprintf("%s.cases[%s]", path, name)
		cases[name] = *nonnil(c, cpath).trySeal(cpath)
	}

	var deflt *prediction.Prediction
	if p.Default != nil {
		deflt = p.Default.trySeal(path + ".default")
	}

	var cache *CacheConfig
	if p.Cache != nil {
		cache = p.Cache.trySeal(path + ".cache")
	}

	return &PredictionConfig{
		url:     p.URL,
		timeout: duration(p.Timeout, 10*time.Second, path+".timeout"),
		cases:   cases,
		deflt:   deflt,
		cache:   cache,
	}
}

type WorkloadsConfigMarshall struct {
	Prefix          string   `yaml:"prefix,omitempty"`
	ExemptPrefix    string   `yaml:"exemptPrefix,omitempty"`
	ReservationTTL  string   `yaml:"reservationTTL,omitempty"`
	Namespace       string   `yaml:"namespace,omitempty"`
	StepCodes       []string `yaml:"stepCodes,omitempty"`
	Principal       string   `yaml:"principal,omitempty"`
	CaseLabel       string   `yaml:"caseLabel,omitempty"`
	GPUFreeCases    []string `yaml:"gpuFreeCases,omitempty"`
	DefaultGPULimit string   `yaml:"defaultGPULimit,omitempty"`
}

func (w *WorkloadsConfigMarshall) trySeal(path string) *WorkloadsConfig {
	stepCodes := w.StepCodes
	if len(stepCodes) == 0 {
		stepCodes = []string{"ml-step-100", "ml-step-200", "ml-step-400"}
	}
	gpuFree := w.GPUFreeCases
	if gpuFree == nil {
		gpuFree = []string{resources.CasePreprocess}
	}
	gpuLimit := orDefault(w.DefaultGPULimit, resources.DefaultGPULimit)
	if _, err := resources.ParseCPU(gpuLimit); err != nil {
		panic(fmt.Errorf("%s.defaultGPULimit can not be parsed: %w", path, err))
	}

	return &WorkloadsConfig{
		prefix:          orDefault(w.Prefix, domain.SequentialPrefix),
		exemptPrefix:    orDefault(w.ExemptPrefix, domain.ExemptPrefix),
		reservationTTL:  duration(w.ReservationTTL, 5*time.Minute, path+".reservationTTL"),
		namespace:       orDefault(w.Namespace, "keti-crd"),
		stepCodes:       append([]string{}, stepCodes...),
		principal:       orDefault(w.Principal, "jhpark"),
		caseLabel:       orDefault(w.CaseLabel, "ml.workload"),
		gpuFreeCases:    append([]string{}, gpuFree...),
		defaultGPULimit: gpuLimit,
	}
}

type MirrorConfigMarshall struct {
	RefreshKnown bool `yaml:"refreshKnown,omitempty"`
}

func (m *MirrorConfigMarshall) trySeal(string) *MirrorConfig {
	return &MirrorConfig{refreshKnown: m.RefreshKnown}
}

type SubmissionConfigMarshall struct {
	// default: true
	RetryEnabled      *bool `yaml:"retryEnabled,omitempty"`
	AnnotateResources bool  `yaml:"annotateResources,omitempty"`
}

func (s *SubmissionConfigMarshall) trySeal(string) *SubmissionConfig {
	retry := true
	if s.RetryEnabled != nil {
		retry = *s.RetryEnabled
	}
	return &SubmissionConfig{
		retryEnabled:      retry,
		annotateResources: s.AnnotateResources,
	}
}

type TimeoutsConfigMarshall struct {
	Sync   string `yaml:"sync,omitempty"`
	Submit string `yaml:"submit,omitempty"`
	Delete string `yaml:"delete,omitempty"`
}

func (t *TimeoutsConfigMarshall) trySeal(path string) *TimeoutsConfig {
	return &TimeoutsConfig{
		sync:   duration(t.Sync, 10*time.Second, path+".sync"),
		submit: duration(t.Submit, 30*time.Second, path+".submit"),
		delete: duration(t.Delete, 10*time.Second, path+".delete"),
	}
}

type KubernetesConfigMarshall struct {
	Enabled    bool   `yaml:"enabled,omitempty"`
	Kubeconfig string `yaml:"kubeconfig,omitempty"`
}

func (k *KubernetesConfigMarshall) trySeal(string) *KubernetesConfig {
	return &KubernetesConfig{enabled: k.Enabled, kubeconfig: k.Kubeconfig}
}

func cpu(v string, path string) decimal.Decimal {
	d, err := resources.ParseCPU(required(v, path))
	if err != nil {
		panic(fmt.Errorf("%s can not be parsed: %w", path, err))
	}
	return d
}

func memory(v string, path string) decimal.Decimal {
	d, err := resources.ParseMemory(required(v, path))
	if err != nil {
		panic(fmt.Errorf("%s can not be parsed: %w", path, err))
	}
	return d
}

func duration(v string, deflt time.Duration, path string) time.Duration {
	if v == "" {
		return deflt
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s can not be parsed: %w", path, err))
	}
	if d <= 0 {
		panic(fmt.Errorf("%s should be positive", path))
	}
	return d
}

func orDefault(v string, deflt string) string {
	if v == "" {
		return deflt
	}
	return v
}

func orZero[T any](v *T) *T {
	if v == nil {
		return new(T)
	}
	return v
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}
