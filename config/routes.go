package config

import (
	"fmt"
	"os"

	"github.com/upb/parking-console/internal/auth"
	"github.com/upb/parking-console/internal/routeguard"
	"gopkg.in/yaml.v3"
)

// RouteTableFile is the on-disk shape of ROUTE_TABLE_FILE.
//
//	landing:
//	  login: /login
//	  admin: /admin/dashboard
//	  user: /user/dashboard
//	routes:
//	  - name: home
//	    path: /
//	    page: home
//	  - name: admin-dashboard
//	    path: /admin/dashboard
//	    page: admin/dashboard
//	    access:
//	      requires_role: admin
type RouteTableFile struct {
	Landing *routeguard.Landing `yaml:"landing"`
	Routes  routeguard.Table    `yaml:"routes"`
}

// DefaultRouteTable returns the console's built-in page table
func DefaultRouteTable() routeguard.Table {
	signedIn := routeguard.Access{RequiresAuth: true}
	admin := routeguard.Access{RequiresAuth: true, RequiresRole: auth.RoleAdmin}
	guest := routeguard.Access{GuestOnly: true}

	return routeguard.Table{
		{Name: "home", Path: "/", Page: "home"},
		{Name: "about", Path: "/about", Page: "about"},
		{Name: "contact", Path: "/contact", Page: "contact"},
		{Name: "general-home", Path: "/general-home", Page: "home"},

		{Name: "login", Path: "/login", Page: "login", Access: guest},
		{Name: "register", Path: "/register", Page: "register", Access: guest},

		{Name: "user-dashboard", Path: "/user/dashboard", Page: "user/dashboard", Access: signedIn},
		{Name: "user-book", Path: "/user/book", Page: "user/book", Access: signedIn},
		{Name: "user-release", Path: "/user/release", Page: "user/release", Access: signedIn},
		{Name: "user-select-lot", Path: "/user/select-lot", Page: "user/select-lot", Access: signedIn},
		{Name: "user-summary", Path: "/user/summary", Page: "user/summary", Access: signedIn},

		{Name: "admin-dashboard", Path: "/admin/dashboard", Page: "admin/dashboard", Access: admin},
		{Name: "admin-edit-lot", Path: "/admin/edit-lot/{id}", Page: "admin/edit-lot", Access: admin},
		{Name: "admin-view-lot", Path: "/admin/view-lot/{id}", Page: "admin/view-lot", Access: admin},
	}
}

// LoadRouteTable reads a route table from a YAML file
func LoadRouteTable(path string) (*RouteTableFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var file RouteTableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(file.Routes) == 0 {
		return nil, fmt.Errorf("%s: %w: no routes", path, routeguard.ErrInvalidTable)
	}

	return &file, nil
}
