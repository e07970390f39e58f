// Package kubeutil connects to Kubernetes.
package kubeutil

import (
	"os"
	"path/filepath"

	xe "github.com/keti-strato/pms/pkg/errors"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// FindKubeconfig returns the path to kubeconfig to be used.
//
// It searches kubeconfig from, in order of priority (least first),
//
//   - `~/.kube/config`
//   - environmental variable `KUBECONFIG`
//   - the file found first from the kubeconfigSearchPath
//
// Empty string means no files are found.
func FindKubeconfig(kubeconfigSearchPath ...string) string {
	kubeconfig := ""

	// priority 1 (least): ~/.kube/config
	if home := homedir.HomeDir(); home != "" {
		if p := filepath.Join(home, ".kube", "config"); isFile(p) {
			kubeconfig = p
		}
	}

	// priority 2: envvar KUBECONFIG
	if k := os.Getenv("KUBECONFIG"); k != "" && isFile(k) {
		kubeconfig = k
	}

	// priority 3 (most): search path
	for _, sp := range kubeconfigSearchPath {
		if sp != "" && isFile(sp) {
			kubeconfig = sp
			break
		}
	}
	return kubeconfig
}

func isFile(p string) bool {
	s, err := os.Stat(p)
	return err == nil && !s.IsDir()
}

// RestConfig detects configuration to connect Kubernetes.
//
// When no kubeconfig is found, it tries to use in-cluster config.
func RestConfig(kubeconfigSearchPath ...string) (*rest.Config, error) {
	kubeconfig := FindKubeconfig(kubeconfigSearchPath...)

	var config *rest.Config
	var err error
	if kubeconfig == "" {
		config, err = rest.InClusterConfig()
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return config, nil
}

// ConnectDynamic creates a dynamic client, to read custom resources.
func ConnectDynamic(kubeconfigSearchPath ...string) (dynamic.Interface, error) {
	config, err := RestConfig(kubeconfigSearchPath...)
	if err != nil {
		return nil, err
	}
	client, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return client, nil
}
