package web

// NavLink is one entry of the navigation bar.
type NavLink struct {
	Label  string
	Path   string
	Active bool
}

// NavLinks is the navigation bar, in display order.
var NavLinks = []NavLink{
	{Label: "Home", Path: "/"},
	{Label: "Monuments", Path: "/monuments"},
	{Label: "Community", Path: "/community"},
	{Label: "Login", Path: "/login"},
}

// navFor returns a copy of NavLinks with the link for path marked active.
func navFor(path string) []NavLink {
	out := make([]NavLink, len(NavLinks))
	copy(out, NavLinks)
	for i := range out {
		out[i].Active = out[i].Path == path
	}
	return out
}
