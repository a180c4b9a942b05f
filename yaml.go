package threadpool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlPool is one pool declaration in a YAML pool-set document.
type yamlPool struct {
	Name     string `yaml:"name"`
	Threads  int    `yaml:"threads"`
	MaxQueue *int   `yaml:"max_queue"`

	line int
}

func (yp *yamlPool) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlPool
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*yp = yamlPool(p)
	yp.line = node.Line
	return nil
}

type yamlConf struct {
	Pools []yamlPool `yaml:"pools"`
}

// LoadYAML reads pool declarations from a YAML document of the form
//
//	pools:
//	  - name: uploads
//	    threads: 8
//	    max_queue: 1024
//
// and feeds them into the registry with the same validation as the
// directive parser. max_queue defaults to 65536 when omitted.
func (r *Registry) LoadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return r.ParseYAML(path, data)
}

// ParseYAML reads pool declarations from src. filename is used in
// diagnostics only.
func (r *Registry) ParseYAML(filename string, src []byte) error {
	var conf yamlConf
	if err := yaml.Unmarshal(src, &conf); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfig, filename, err)
	}

	for _, yp := range conf.Pools {
		maxQueue := DefaultMaxQueue
		if yp.MaxQueue != nil {
			maxQueue = *yp.MaxQueue
		}
		if yp.Threads < 1 {
			return fmt.Errorf("%w: pool %q: invalid threads value %d in %s:%d",
				ErrConfig, yp.Name, yp.Threads, filename, yp.line)
		}
		if err := r.declareAt(yp.Name, yp.Threads, maxQueue, filename, yp.line); err != nil {
			return err
		}
	}

	return nil
}
