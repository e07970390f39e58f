package pmsd

import (
	"time"

	"github.com/keti-strato/pms/pkg/workloads/prediction"
)

type Config struct {
	port       int32
	platform   *PlatformConfig
	database   *DatabaseConfig
	prediction *PredictionConfig
	workloads  *WorkloadsConfig
	mirror     *MirrorConfig
	submission *SubmissionConfig
	timeouts   *TimeoutsConfig
	kubernetes *KubernetesConfig
}

func (c *Config) Port() int32 {
	return c.port
}

func (c *Config) Platform() *PlatformConfig {
	return c.platform
}

func (c *Config) Database() *DatabaseConfig {
	return c.database
}

func (c *Config) Prediction() *PredictionConfig {
	return c.prediction
}

func (c *Config) Workloads() *WorkloadsConfig {
	return c.workloads
}

func (c *Config) Mirror() *MirrorConfig {
	return c.mirror
}

func (c *Config) Submission() *SubmissionConfig {
	return c.submission
}

func (c *Config) Timeouts() *TimeoutsConfig {
	return c.timeouts
}

func (c *Config) Kubernetes() *KubernetesConfig {
	return c.kubernetes
}

// Remote platform where workloads run.
type PlatformConfig struct {
	url   string
	token string
}

// API root of the platform.
func (p *PlatformConfig) URL() string {
	return p.url
}

// Value of Authorization header.
func (p *PlatformConfig) Token() string {
	return p.token
}

type DatabaseConfig struct {
	url      string
	maxConns int32
}

// Connection string for the mirror database.
//
// Empty means the mirror is held in memory.
func (d *DatabaseConfig) URL() string {
	return d.url
}

func (d *DatabaseConfig) MaxConns() int32 {
	return d.maxConns
}

type PredictionConfig struct {
	url     string
	timeout time.Duration
	cases   map[string]prediction.Prediction
	deflt   *prediction.Prediction
	cache   *CacheConfig
}

// Endpoint of the prediction service.
//
// Empty means fixed predictions are used.
func (p *PredictionConfig) URL() string {
	return p.url
}

func (p *PredictionConfig) Timeout() time.Duration {
	return p.timeout
}

// Fixed predictions by workload case.
func (p *PredictionConfig) Cases() map[string]prediction.Prediction {
	m := make(map[string]prediction.Prediction, len(p.cases))
	for k, v := range p.cases {
		m[k] = v
	}
	return m
}

// Fixed prediction for unknown cases. It can be nil.
func (p *PredictionConfig) Default() *prediction.Prediction {
	return p.deflt
}

// Cache of predictions. nil when caching is disabled.
func (p *PredictionConfig) Cache() *CacheConfig {
	return p.cache
}

type CacheConfig struct {
	redis  string
	prefix string
	ttl    time.Duration
}

// address of redis.
func (c *CacheConfig) Redis() string {
	return c.redis
}

func (c *CacheConfig) Prefix() string {
	return c.prefix
}

func (c *CacheConfig) TTL() time.Duration {
	return c.ttl
}

type WorkloadsConfig struct {
	prefix          string
	exemptPrefix    string
	reservationTTL  time.Duration
	namespace       string
	stepCodes       []string
	principal       string
	caseLabel       string
	gpuFreeCases    []string
	defaultGPULimit string
}

// Prefix of sequential workload ids.
func (w *WorkloadsConfig) Prefix() string {
	return w.prefix
}

// Workloads having ids with this prefix are never removed from the mirror.
func (w *WorkloadsConfig) ExemptPrefix() string {
	return w.exemptPrefix
}

func (w *WorkloadsConfig) ReservationTTL() time.Duration {
	return w.reservationTTL
}

func (w *WorkloadsConfig) Namespace() string {
	return w.namespace
}

func (w *WorkloadsConfig) StepCodes() []string {
	return append([]string{}, w.stepCodes...)
}

// User id of submissions without one.
func (w *WorkloadsConfig) Principal() string {
	return w.principal
}

// Label of steps telling their workload case.
func (w *WorkloadsConfig) CaseLabel() string {
	return w.caseLabel
}

func (w *WorkloadsConfig) GPUFreeCases() []string {
	return append([]string{}, w.gpuFreeCases...)
}

func (w *WorkloadsConfig) DefaultGPULimit() string {
	return w.defaultGPULimit
}

type MirrorConfig struct {
	refreshKnown bool
}

// When true, synchronization updates workloads which are mirrored already.
func (m *MirrorConfig) RefreshKnown() bool {
	return m.refreshKnown
}

type SubmissionConfig struct {
	retryEnabled      bool
	annotateResources bool
}

func (s *SubmissionConfig) RetryEnabled() bool {
	return s.retryEnabled
}

// When true, resources of all submissions are annotated.
func (s *SubmissionConfig) AnnotateResources() bool {
	return s.annotateResources
}

type TimeoutsConfig struct {
	sync   time.Duration
	submit time.Duration
	delete time.Duration
}

func (t *TimeoutsConfig) Sync() time.Duration {
	return t.sync
}

func (t *TimeoutsConfig) Submit() time.Duration {
	return t.submit
}

func (t *TimeoutsConfig) Delete() time.Duration {
	return t.delete
}

type KubernetesConfig struct {
	enabled    bool
	kubeconfig string
}

// Enabled tells workflow status is served.
func (k *KubernetesConfig) Enabled() bool {
	return k.enabled
}

// Path to kubeconfig. Empty means in-cluster configuration.
func (k *KubernetesConfig) Kubeconfig() string {
	return k.kubeconfig
}
