package launcher

import (
	"kucukaslan/necoport/domain"
	"strings"
)

// Profile describes the ports a well known dev server wants
type Profile struct {
	Name        string
	Description string
	Ports       map[string]domain.PortHint
	Env         map[string]string
}

func hints(ports map[string]int) map[string]domain.PortHint {
	out := make(map[string]domain.PortHint, len(ports))
	for name, port := range ports {
		out[name] = domain.PortHint{Hint: port}
	}
	return out
}

// checked in order; the first pattern contained in the command wins
var profiles = []struct {
	pattern string
	profile Profile
}{
	{"platform_manager.py", Profile{
		Name:        "platform-manager",
		Description: "Platform Manager",
		Ports:       hints(map[string]int{"main": 8000, "auth": 8001, "rbac": 8002, "testapp": 8003}),
		Env: map[string]string{
			"PLATFORM_PORT":     "8000",
			"AUTH_SERVICE_PORT": "8001",
			"RBAC_SERVICE_PORT": "8002",
			"TEST_APP_PORT":     "8003",
		},
	}},
	{"manage.py runserver", Profile{Name: "django-dev", Description: "Django Development Server", Ports: hints(map[string]int{"main": 8000})}},
	{"next dev", Profile{Name: "nextjs-dev", Description: "Next.js Development Server", Ports: hints(map[string]int{"main": 3000, "hmr": 3001})}},
	{"vite", Profile{Name: "vite-dev", Description: "Vite Development Server", Ports: hints(map[string]int{"main": 5173, "hmr": 5174})}},
	{"react-scripts start", Profile{Name: "cra-dev", Description: "Create React App", Ports: hints(map[string]int{"main": 3000})}},
	{"rails server", Profile{Name: "rails-dev", Description: "Ruby on Rails Server", Ports: hints(map[string]int{"main": 3000})}},
	{"uvicorn", Profile{Name: "fastapi", Description: "FastAPI Application", Ports: hints(map[string]int{"main": 8000})}},
	{"flask run", Profile{Name: "flask-dev", Description: "Flask Development Server", Ports: hints(map[string]int{"main": 5000})}},
}

// DetectProfile matches command against the known dev servers.
func DetectProfile(command string) (Profile, bool) {
	for _, p := range profiles {
		if strings.Contains(command, p.pattern) {
			return p.profile, true
		}
	}
	return Profile{}, false
}
