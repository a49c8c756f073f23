package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	"goji.io"
	"goji.io/pat"

	yml "gopkg.in/yaml.v2"

	"github.com/lsst-sims/imsimobs/imsim"
	"github.com/lsst-sims/imsimobs/server/middleware/locker"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "imsimsrv.yml"
	k              = koanf.New(".")
)

type config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr"`

	// PackageRoot is the installation root the camera policy file is
	// resolved against
	PackageRoot string `yaml:"PackageRoot"`

	// Endpoint is the URL stem the camera routes are served under
	Endpoint string `yaml:"Endpoint"`

	// Lockable adds a lock route and middleware so operators can take
	// the service offline during a policy swap
	Lockable bool `yaml:"Lockable"`
}

func setupconfig() {
	k.Load(structs.Provider(config{
		Addr:        ":8000",
		PackageRoot: ".",
		Endpoint:    "/imsim"}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `imsimsrv serves imsim camera metadata over HTTP: the detector ID
table from the camera policy file, detector-exposure ID computation,
and translation of raw FITS headers to standard observation metadata.

Usage:
	imsimsrv <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `imsimsrv is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

When no configuration is provided, the defaults are used.  The command
mkconf generates the configuration file with the default values.

PackageRoot must point at an installation containing policy/imsim.yaml.

Routes served under Endpoint:
	GET  /camera                the camera policy summary
	GET  /detectors             detector name => ID table
	GET  /detector-exposure-id  ?exposure=..&detector=..[&max=..&mode=..]
	POST /visit-info            raw FITS file body => observation metadata
	GET  /route-list            all bound routes

With Lockable true, GET/POST /lock manipulates a lock that bounces all
other routes with 423 while held.`
	fmt.Println(str)
}

func mkconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	err = yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("imsimsrv version %v\n", Version)
}

func run() {
	cfg := config{}
	err := k.Unmarshal("", &cfg)
	if err != nil {
		log.Fatal(err)
	}
	cam := imsim.New(cfg.PackageRoot)
	wrapper, err := imsim.NewHTTPWrapper(cam)
	if err != nil {
		log.Fatalf("error loading camera policy: %v", err)
	}

	root := goji.NewMux()
	if cfg.Lockable {
		lock := locker.New()
		locker.Inject(wrapper, lock)
		root.Use(lock.Check)
	}

	// clean up the submux string
	stem := cfg.Endpoint
	if !strings.HasPrefix(stem, "/") {
		stem = "/" + stem
	}
	if !strings.HasSuffix(stem, "/") {
		stem = stem + "/"
	}
	mux := goji.SubMux()
	wrapper.RT().Bind(mux)
	root.Handle(pat.New(stem+"*"), mux)

	log.Println("now listening for requests at ", cfg.Addr+stem)
	log.Fatal(http.ListenAndServe(cfg.Addr, root))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
