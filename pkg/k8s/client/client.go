package client

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// ResolveKubeconfig returns the kubeconfig path to use for the given flag value.
//
// Resolution order:
//  1. the explicit path, if non-empty
//  2. KUBECONFIG environment variable
//  3. ~/.kube/config, if it exists
//  4. "" which selects in-cluster configuration (service account)
func ResolveKubeconfig(kubeconfig string) string {
	if kubeconfig != "" {
		return kubeconfig
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}

// NewClientset builds a Kubernetes client from the given kubeconfig path.
// See ResolveKubeconfig for how an empty path is handled.
//
// The inventory only needs read access to a single Secret, so no client is
// cached; callers build one per run when a secret reference is configured.
func NewClientset(kubeconfig string) (kubernetes.Interface, error) {
	config, err := clientcmd.BuildConfigFromFlags("", ResolveKubeconfig(kubeconfig))
	if err != nil {
		return nil, fmt.Errorf("failed to build kube config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return clientset, nil
}
