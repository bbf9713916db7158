package transport

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genPrivateIPv4() gopter.Gen {
	return gen.OneGenOf(
		gopter.CombineGens(gen.IntRange(0, 255), gen.IntRange(0, 255), gen.IntRange(0, 255)).
			Map(func(v []interface{}) string {
				return fmt.Sprintf("10.%d.%d.%d", v[0], v[1], v[2])
			}),
		gopter.CombineGens(gen.IntRange(16, 31), gen.IntRange(0, 255), gen.IntRange(0, 255)).
			Map(func(v []interface{}) string {
				return fmt.Sprintf("172.%d.%d.%d", v[0], v[1], v[2])
			}),
		gopter.CombineGens(gen.IntRange(0, 255), gen.IntRange(0, 255)).
			Map(func(v []interface{}) string {
				return fmt.Sprintf("192.168.%d.%d", v[0], v[1])
			}),
	)
}

func genPublicIPv4() gopter.Gen {
	return gopter.CombineGens(gen.IntRange(1, 223), gen.IntRange(0, 255), gen.IntRange(0, 255), gen.IntRange(1, 254)).
		SuchThat(func(v []interface{}) bool {
			a, b := v[0].(int), v[1].(int)
			return a != 10 && a != 127 && !(a == 172 && b >= 16 && b <= 31) && !(a == 192 && b == 168)
		}).
		Map(func(v []interface{}) string {
			return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
		})
}

func TestSelect_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(7)

	properties := gopter.NewProperties(parameters)

	properties.Property("private endpoints go direct when bypass is on", prop.ForAll(
		func(ip string, port int) bool {
			cfg := Select(fmt.Sprintf("http://%s:%d/v1", ip, port), true, time.Second)
			return cfg.ProxyMode == ProxyDirect && !cfg.TrustEnvironment
		},
		genPrivateIPv4(),
		gen.IntRange(1, 65535),
	))

	properties.Property("public endpoints always use the environment", prop.ForAll(
		func(ip string, bypass bool) bool {
			cfg := Select("https://"+ip, bypass, time.Second)
			return cfg.ProxyMode == ProxyFromEnvironment && cfg.TrustEnvironment
		},
		genPublicIPv4(),
		gen.Bool(),
	))

	properties.Property("bypass off never goes direct", prop.ForAll(
		func(host string) bool {
			return Select("http://"+host, false, time.Second).ProxyMode == ProxyFromEnvironment
		},
		gen.OneGenOf(genPrivateIPv4(), genPublicIPv4(), gen.Const("localhost"), gen.Identifier()),
	))

	properties.Property("timeout is carried through", prop.ForAll(
		func(secs int, bypass bool) bool {
			d := time.Duration(secs) * time.Second
			return Select("http://10.0.0.1", bypass, d).Timeout == d
		},
		gen.IntRange(1, 600),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
