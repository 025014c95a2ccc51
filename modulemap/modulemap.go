// Package modulemap provides the static package-prefix → platform-module
// table spec.md §4.4 describes: a compile-time, ordered list of non-java.base
// package families (java.base is always included and therefore never needs
// an entry). Platform packages outside the listed families, such as
// java/util/logging or javax/xml/parsers, have no entry and look up like
// application code.
package modulemap

import (
	"strings"

	"github.com/modcut/modcut"
)

// entry is one (package prefix in slash form, owning module) pair.
type entry struct {
	prefix string
	module modcut.ModuleName
}

// table is ordered; Lookup returns the first match. Prefixes are kept
// disjoint in practice (no platform package lives under two different
// modules), so order only matters for the rare prefix-of-a-prefix case,
// which is listed most-specific first.
var table = []entry{
	{"java/lang/instrument", "java.instrument"},
	{"java/applet", "java.desktop"},
	{"java/awt", "java.desktop"},
	{"java/beans", "java.desktop"},
	{"javax/accessibility", "java.desktop"},
	{"javax/imageio", "java.desktop"},
	{"javax/print", "java.desktop"},
	{"javax/sound", "java.desktop"},
	{"javax/swing", "java.desktop"},
	{"java/rmi", "java.rmi"},
	{"javax/rmi/ssl", "java.rmi"},
	{"java/sql", "java.sql"},
	{"javax/sql/rowset", "java.sql.rowset"},
	{"javax/sql", "java.sql"},
	{"java/net/http", "java.net.http"},
	{"java/security/sasl", "java.security.sasl"},
	{"javax/security/sasl", "java.security.sasl"},
	{"java/security/jgss", "java.security.jgss"},
	{"javax/security/auth/kerberos", "java.security.jgss"},
	{"javax/smartcardio", "java.smartcardio"},
	{"javax/naming/ldap/spi", "java.naming"},
	{"javax/naming", "java.naming"},
	{"javax/xml/crypto", "java.xml.crypto"},
	{"javax/xml/soap", "java.xml.soap"},
	{"javax/xml/ws", "java.xml.ws"},
	{"javax/xml/bind", "java.xml.bind"},
	{"javax/annotation", "java.xml.ws.annotation"},
	{"javax/transaction/xa", "java.transaction.xa"},
	{"javax/activation", "java.activation"},
	{"javax/management/remote/rmi", "java.management.rmi"},
	{"javax/management", "java.management"},
	{"com/sun/jdi", "jdk.jdi"},
	{"com/sun/management", "jdk.management"},
	{"com/sun/source", "jdk.compiler"},
	{"com/sun/tools/attach", "jdk.attach"},
	{"com/sun/tools/javac", "jdk.compiler"},
	{"com/sun/net/httpserver", "jdk.httpserver"},
	{"com/sun/nio/sctp", "jdk.sctp"},
	{"com/sun/security/auth", "jdk.security.auth"},
	{"com/sun/security/jgss", "jdk.security.jgss"},
	{"jdk/jfr", "jdk.jfr"},
	{"jdk/jshell", "jdk.jshell"},
	{"jdk/nashorn/api/scripting", "jdk.scripting.nashorn"},
	{"jdk/net", "jdk.net"},
	{"jdk/nio/mapmode", "jdk.nio.mapmode"},
	{"jdk/security/jarsigner", "jdk.jartool"},
	{"org/ietf/jgss", "java.security.jgss"},
	{"org/w3c/dom/xpath", "java.xml"},
	{"org/w3c/dom", "java.xml"},
	{"org/xml/sax", "java.xml"},
	{"javafx/application", "javafx.base"},
	{"javafx/beans", "javafx.base"},
	{"javafx/collections", "javafx.base"},
	{"javafx/event", "javafx.base"},
	{"javafx/scene/control", "javafx.controls"},
	{"javafx/scene/media", "javafx.media"},
	{"javafx/scene/web", "javafx.web"},
	{"javafx/fxml", "javafx.fxml"},
	{"javafx/scene/swing", "javafx.swing"},
	{"javafx/scene", "javafx.graphics"},
	{"javafx/stage", "javafx.graphics"},
}

// Lookup returns the platform module owning slash-form package pkg, and
// true. Packages not covered by the table (application code, or already
// part of java.base) return ("", false); callers treat that as "base module
// or not a platform reference at all" per spec.md §4.4.
func Lookup(pkg string) (modcut.ModuleName, bool) {
	for _, e := range table {
		if pkg == e.prefix || strings.HasPrefix(pkg, e.prefix+"/") {
			return e.module, true
		}
	}
	return "", false
}
